package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpnorm/internal/adp"
	"adpnorm/internal/domain"
	"adpnorm/internal/fields"
	"adpnorm/internal/kvp"
	"adpnorm/internal/service"
)

func defaultOptions() service.NormalizeOptions {
	return service.NormalizeOptions{Selection: kvp.KeepAll, Suffix: "_ADP", DocClassVar: "ADPDocType"}
}

func TestNormalizer_NormalizePage(t *testing.T) {
	doc, err := adp.Parse(invoiceJSON(t))
	require.NoError(t, err)

	result, err := service.NewNormalizer().NormalizePage(doc, service.PageRequest{PageID: "p1", Options: defaultOptions()})
	require.NoError(t, err)

	assert.Equal(t, "p1_layout.xml", result.LayoutFile)
	assert.True(t, bytes.HasPrefix(result.Layout, []byte{0xFF, 0xFE}))
	assert.NotEmpty(t, result.Normal)
	assert.NotEmpty(t, result.Tables)
	assert.NotEmpty(t, result.Fields.Children)
	assert.Equal(t, "p1_layout.xml", result.Fields.Vars.Value(fields.VarLayout))
}

func TestNormalizer_NormalizeDocument(t *testing.T) {
	doc, err := adp.Parse(repeatPages(t, 2))
	require.NoError(t, err)
	n := service.NewNormalizer()

	pages := service.Assignments([]string{"cover", "p1", "p2", "p3"}, false)
	pages[3].JSONPage = 7

	outcomes, err := n.NormalizeDocument(context.Background(), doc, pages, service.DocumentOptions{
		NormalizeOptions: defaultOptions(),
		Retention:        fields.RetainAll,
		Consolidate:      true,
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	assert.Nil(t, outcomes[0].Result)
	assert.NoError(t, outcomes[0].Err)

	require.NotNil(t, outcomes[1].Result)
	assert.False(t, outcomes[1].Merged)
	require.NotNil(t, outcomes[2].Result)
	assert.True(t, outcomes[2].Merged)
	assert.Empty(t, outcomes[2].Result.Fields.Children)
	assert.Equal(t, "1", outcomes[1].Result.Fields.Vars.Value(fields.VarFirstPage))

	assert.Nil(t, outcomes[3].Result)
	assert.ErrorIs(t, outcomes[3].Err, domain.ErrPageIndexOutOfRange)
}

func TestNormalizer_NormalizeDocument_Retention(t *testing.T) {
	doc, err := adp.Parse(invoiceJSON(t))
	require.NoError(t, err)

	outcomes, err := service.NewNormalizer().NormalizeDocument(context.Background(), doc,
		service.Assignments([]string{"p1"}, true),
		service.DocumentOptions{NormalizeOptions: defaultOptions(), Retention: fields.DeleteAll})
	require.NoError(t, err)
	assert.Empty(t, outcomes[0].Result.Fields.Children)
}

func TestNormalizer_NormalizeDocument_Canceled(t *testing.T) {
	doc, err := adp.Parse(invoiceJSON(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = service.NewNormalizer().NormalizeDocument(ctx, doc, service.Assignments([]string{"p1"}, true), service.DocumentOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
