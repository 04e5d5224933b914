package alphabet

import (
	"container/heap"
	"sort"
)

// treeNode is a node of the Huffman tree under construction. Leaves carry a
// letter; internal nodes only aggregate frequencies.
type treeNode struct {
	frequency uint64
	sequence  int
	letter    Letter
	isLeaf    bool
	left      *treeNode
	right     *treeNode
}

type nodeHeap []*treeNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	// Ties are broken by creation order to keep the table deterministic.
	if h[i].frequency != h[j].frequency {
		return h[i].frequency < h[j].frequency
	}
	return h[i].sequence < h[j].sequence
}
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(*treeNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// buildHuffmanTable constructs the canonical letter-to-code table for the
// given frequencies. Zero frequencies are clamped to one so every letter of
// the alphabet receives a code.
func buildHuffmanTable(frequencies map[Letter]uint64) (map[Letter]Code, error) {
	letters := make([]Letter, 0, len(frequencies))
	for letter := range frequencies {
		letters = append(letters, letter)
	}
	sort.Ints(letters)

	h := make(nodeHeap, 0, len(letters))
	sequence := 0
	for _, letter := range letters {
		frequency := max(frequencies[letter], 1)
		h = append(h, &treeNode{frequency: frequency, sequence: sequence, letter: letter, isLeaf: true})
		sequence++
	}
	heap.Init(&h)

	for h.Len() > 1 {
		first := heap.Pop(&h).(*treeNode)
		second := heap.Pop(&h).(*treeNode)
		heap.Push(&h, &treeNode{
			frequency: first.frequency + second.frequency,
			sequence:  sequence,
			left:      first,
			right:     second,
		})
		sequence++
	}

	table := make(map[Letter]Code, len(letters))
	if err := fillTable(h[0], Code{}, table); err != nil {
		return nil, err
	}
	return table, nil
}

func fillTable(node *treeNode, code Code, table map[Letter]Code) error {
	if node.isLeaf {
		table[node.letter] = code
		return nil
	}
	leftCode, err := code.Append(false)
	if err != nil {
		return err
	}
	if err := fillTable(node.left, leftCode, table); err != nil {
		return err
	}
	rightCode, err := code.Append(true)
	if err != nil {
		return err
	}
	return fillTable(node.right, rightCode, table)
}
