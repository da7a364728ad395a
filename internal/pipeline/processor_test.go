package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/es"
	"campus-info-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	docs    map[int64]es.FAQDocument
	deleted []int64
	err     error
}

func (f *fakeIndex) IndexFAQ(ctx context.Context, doc es.FAQDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeleteFAQ(ctx context.Context, id int64) error {
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newFixture(t *testing.T) (store.RecordStore, *fakeIndex, *Processor) {
	t.Helper()
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	idx := &fakeIndex{docs: map[int64]es.FAQDocument{}}
	return s, idx, NewProcessor(s, idx)
}

func TestProcessor_IndexesActiveFAQs(t *testing.T) {
	s, idx, p := newFixture(t)
	ctx := context.Background()
	id, err := s.Insert(ctx, model.TableFAQs, store.Record{"question": "Wifi?", "answer": "Use campus SSO", "category": "it"})
	require.NoError(t, err)

	require.NoError(t, p.Process(ctx, tasks.RecordChangeTask{Table: model.TableFAQs, RecordID: id, Action: tasks.ActionCreate}))
	assert.Equal(t, es.FAQDocument{ID: id, Question: "Wifi?", Answer: "Use campus SSO", Category: "it"}, idx.docs[id])

	_, err = s.Update(ctx, model.TableFAQs, id, store.Record{"is_active": false})
	require.NoError(t, err)
	require.NoError(t, p.Process(ctx, tasks.RecordChangeTask{Table: model.TableFAQs, RecordID: id, Action: tasks.ActionDelete}))
	assert.Empty(t, idx.docs)
	assert.Equal(t, []int64{id}, idx.deleted)
}

func TestProcessor_IgnoresOtherTablesAndMissingRecords(t *testing.T) {
	_, idx, p := newFixture(t)
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, tasks.RecordChangeTask{Table: model.TableEvents, RecordID: 1, Action: tasks.ActionCreate}))
	assert.Empty(t, idx.deleted)

	require.NoError(t, p.Process(ctx, tasks.RecordChangeTask{Table: model.TableFAQs, RecordID: 9, Action: tasks.ActionUpdate}))
	assert.Equal(t, []int64{9}, idx.deleted)

	noIndex := NewProcessor(nil, nil)
	assert.NoError(t, noIndex.Process(ctx, tasks.RecordChangeTask{Table: model.TableFAQs, RecordID: 1}))
}

func TestProcessor_IndexErrorAndReindex(t *testing.T) {
	s, idx, p := newFixture(t)
	ctx := context.Background()
	for _, q := range []string{"a?", "b?"} {
		_, err := s.Insert(ctx, model.TableFAQs, store.Record{"question": q, "answer": "x"})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, model.TableFAQs, store.Record{"question": "c?", "answer": "x", "is_active": false})
	require.NoError(t, err)

	n, err := p.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, idx.docs, 2)

	idx.err = errors.New("cluster red")
	pub := NewDirectPublisher(p)
	err = pub.Publish(ctx, tasks.RecordChangeTask{Table: model.TableFAQs, RecordID: 1, Action: tasks.ActionUpdate})
	assert.ErrorIs(t, err, idx.err)
}
