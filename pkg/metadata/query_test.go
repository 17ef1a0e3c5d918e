package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueryService() *QueryService {
	set := &Set{Components: []ComponentMetadata{
		{
			DisplayName: "Alert",
			Description: &Description{Text: "Contextual feedback messages"},
			Props:       []PropertyDescriptor{{Name: "dismissible"}},
		},
		{
			DisplayName: "Modal",
			Description: &Description{Text: "A dialog overlay"},
			Props:       []PropertyDescriptor{{Name: "centered"}, {Name: "onHide"}},
		},
		{
			DisplayName: "ModalHeader",
			Props:       []PropertyDescriptor{{Name: "closeButton"}},
		},
	}}
	return NewQueryService(set, set.BuildIndex())
}

func TestQueryService_ListComponents(t *testing.T) {
	qs := testQueryService()

	tests := []struct {
		keyword string
		want    []string
	}{
		{keyword: "", want: []string{"Alert", "Modal", "ModalHeader"}},
		{keyword: "modal", want: []string{"Modal", "ModalHeader"}},
		{keyword: "FEEDBACK", want: []string{"Alert"}},
		{keyword: "carousel", want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.keyword, func(t *testing.T) {
			got := make([]string, 0)
			for _, c := range qs.ListComponents(tc.keyword) {
				got = append(got, c.DisplayName)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQueryService_GetComponent(t *testing.T) {
	qs := testQueryService()

	comp, ok := qs.GetComponent("Modal")
	require.True(t, ok)
	assert.Equal(t, "Modal", comp.DisplayName)

	comp, ok = qs.GetComponent("modalheader")
	require.True(t, ok)
	assert.Equal(t, "ModalHeader", comp.DisplayName)

	_, ok = qs.GetComponent("Carousel")
	assert.False(t, ok)
}

func TestQueryService_SearchComponents(t *testing.T) {
	qs := testQueryService()

	tests := []struct {
		query      string
		wantNames  []string
		wantReason []string
	}{
		{query: "header", wantNames: []string{"ModalHeader"}, wantReason: []string{"name"}},
		{query: "overlay", wantNames: []string{"Modal"}, wantReason: []string{"description"}},
		{query: "close", wantNames: []string{"ModalHeader"}, wantReason: []string{"prop:closeButton"}},
		{query: "modal", wantNames: []string{"Modal", "ModalHeader"}, wantReason: []string{"name", "name"}},
		{query: "mdlhdr", wantNames: []string{"ModalHeader"}, wantReason: []string{"fuzzy"}},
		{query: "zzz", wantNames: nil, wantReason: nil},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			results := qs.SearchComponents(tc.query)
			var names, reasons []string
			for _, r := range results {
				names = append(names, r.Component.DisplayName)
				reasons = append(reasons, r.MatchReason)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, tc.wantReason, reasons)
		})
	}

	assert.Nil(t, qs.SearchComponents(""))
}
