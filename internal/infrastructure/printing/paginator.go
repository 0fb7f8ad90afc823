package printing

import "fmt"

// SlotLayout reports which repeating row slots a page offers
type SlotLayout interface {
	HasRowSlot(n int) bool
}

// PageContent is the rows and position of one page
type PageContent struct {
	Rows  []Row
	Index int // 1-based
	Total int
}

// PageFunc renders one page
type PageFunc func(PageContent) (*PageArtifact, error)

type capacityState int

const (
	capacityUnknown capacityState = iota
	capacityKnown
	paginationDone
)

// Paginator distributes a row queue over pages. Capacity is not configured:
// it is discovered by filling page 1 until a slot is missing. A Paginator is
// single use.
type Paginator struct {
	slots    SlotLayout
	state    capacityState
	capacity int
	pages    int
}

// NewPaginator creates a paginator for a slot layout
func NewPaginator(slots SlotLayout) *Paginator {
	return &Paginator{slots: slots}
}

// Capacity returns the discovered rows per page. ok is false when every row
// fitted on page 1 and capacity was never reached.
func (p *Paginator) Capacity() (capacity int, ok bool) {
	return p.capacity, p.state != capacityUnknown && p.capacity > 0
}

// Pages returns the number of pages rendered so far
func (p *Paginator) Pages() int {
	return p.pages
}

// Paginate drains queue into pages and calls render once per page in order.
// Page 1 is rendered only after the page count is known.
func (p *Paginator) Paginate(queue *RowQueue, render PageFunc) ([]*PageArtifact, error) {
	if p.state != capacityUnknown {
		return nil, fmt.Errorf("paginator already used")
	}
	if !p.slots.HasRowSlot(1) {
		return nil, NewRenderError(ErrCodeNoRowSlots, "template has no repeating row slots", nil)
	}

	first := make([]Row, 0)
	for slot := 1; queue.Len() > 0 && p.slots.HasRowSlot(slot); slot++ {
		row, _ := queue.Pop()
		first = append(first, row)
	}

	total := 1
	if queue.Len() > 0 {
		p.capacity = len(first)
		p.state = capacityKnown
		total = (queue.Total() + p.capacity - 1) / p.capacity
	} else {
		p.state = paginationDone
	}

	artifacts := make([]*PageArtifact, 0, total)
	emit := func(rows []Row) error {
		p.pages++
		artifact, err := render(PageContent{Rows: rows, Index: p.pages, Total: total})
		if err != nil {
			return err
		}
		artifacts = append(artifacts, artifact)
		return nil
	}

	if err := emit(first); err != nil {
		return nil, err
	}

	for p.state == capacityKnown && queue.Len() > 0 {
		rows := make([]Row, 0, min(p.capacity, queue.Len()))
		for len(rows) < p.capacity {
			row, ok := queue.Pop()
			if !ok {
				break
			}
			rows = append(rows, row)
		}
		if err := emit(rows); err != nil {
			return nil, err
		}
	}
	p.state = paginationDone

	if p.pages != total {
		return nil, fmt.Errorf("rendered %d pages, expected %d", p.pages, total)
	}
	return artifacts, nil
}
