package ticker

import (
	"github.com/quantview/tickersheet/pkg/jsontree"
)

// Statement hierarchies go at most three levels below the top-line items.
// The bound comes from the domain, not the input, so the walk enforces it.
const maxTemplateDepth = 3

// buildTemplate flattens a statement template store into presentation order:
// pre-order, parent before children, sibling order preserved exactly as
// given. Duplicate keys produce duplicate slots on purpose: the reindexing
// step downstream relies on positional template slots, not unique keys.
func buildTemplate(store *jsontree.Value) FlatTemplate {
	var flat FlatTemplate
	for _, node := range store.Get("template").Arr() {
		appendTemplateNode(&flat, node, 0)
	}
	return flat
}

func appendTemplateNode(flat *FlatTemplate, node *jsontree.Value, depth int) {
	key, ok := node.Get("key").Str()
	if !ok {
		return
	}

	flat.TTMKeys = append(flat.TTMKeys, "trailing"+key)
	flat.AnnualKeys = append(flat.AnnualKeys, "annual"+key)
	flat.Levels = append(flat.Levels, depth)

	if depth >= maxTemplateDepth {
		return
	}
	for _, child := range node.Get("children").Arr() {
		appendTemplateNode(flat, child, depth+1)
	}
}
