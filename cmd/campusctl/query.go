package main

import (
	"encoding/json"

	"campus-info-go/internal/store/sqlshim"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var queryCmd = &cobra.Command{
	Use:   "query <statement> [param...]",
	Short: "Run one statement through the query shim and print the result as JSON",
	Example: `  campusctl query "SELECT * FROM users WHERE reg_no = ?" 21BCE001
  campusctl query "DELETE FROM faqs WHERE id = ?" 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(args[1:])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := sqlshim.Execute(cmd.Context(), s, args[0], params...)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// parseParams 把命令行参数按 YAML 标量解析，"3" 成为整数，"true" 成为布尔值。
func parseParams(args []string) ([]interface{}, error) {
	params := make([]interface{}, 0, len(args))
	for _, a := range args {
		var v interface{}
		if err := yaml.Unmarshal([]byte(a), &v); err != nil || v == nil {
			v = a
		}
		params = append(params, v)
	}
	return params, nil
}
