package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"campus-info-go/internal/store"
	"campus-info-go/internal/store/sqlshim"
	"campus-info-go/pkg/log"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedFile 是种子文件的结构：按顺序执行的参数化语句。
type SeedFile struct {
	Statements []SeedStatement `yaml:"statements"`
}

// SeedStatement 是一条语句及其绑定参数。
type SeedStatement struct {
	Statement string        `yaml:"statement"`
	Params    []interface{} `yaml:"params"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Execute the statements of a seed file through the query shim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		inserted, err := runSeed(cmd.Context(), s, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records from %s\n", inserted, args[0])
		return nil
	},
}

// runSeed 逐条执行种子语句，返回新增记录数。被忽略的语句只记录告警。
func runSeed(ctx context.Context, s store.RecordStore, r io.Reader) (int, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	inserted := 0
	for i, st := range seed.Statements {
		res, err := sqlshim.Execute(ctx, s, st.Statement, st.Params...)
		if err != nil {
			return inserted, fmt.Errorf("statement %d: %w", i+1, err)
		}
		if res.InsertID > 0 {
			inserted++
		}
	}
	log.Infof("种子数据导入完成: %d 条语句, %d 条新记录", len(seed.Statements), inserted)
	return inserted, nil
}
