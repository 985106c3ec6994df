package router

const maxHistory = 64

// history is the back stack of visited locations.
type history struct {
	items []string
}

func (h *history) Push(location string) {
	if location == "" {
		return
	}
	if n := len(h.items); 0 < n && h.items[n-1] == location {
		return
	}
	h.items = append(h.items, location)
	if maxHistory < len(h.items) {
		h.items = append(h.items[:0:0], h.items[len(h.items)-maxHistory:]...)
	}
}

func (h *history) Pop() (string, bool) {
	if len(h.items) == 0 {
		return "", false
	}
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last, true
}

func (h history) Len() int {
	return len(h.items)
}
