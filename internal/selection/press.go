package selection

// Press tracks one pointer press so a held press can be told apart from a
// click. Each Begin returns a token; a scheduled timer later calls Fire with
// it, which only succeeds if the same press is still held.
type Press struct {
	token uint64
	id    string
	held  bool
}

// Begin starts tracking a press on id.
func (p *Press) Begin(id string) uint64 {
	p.token++
	p.id = id
	p.held = true
	return p.token
}

// Cancel ends the current press (pointer up, leave or touch end). It reports
// the pressed id and whether a press was still held, so the caller can treat
// a short press as a click.
func (p *Press) Cancel() (string, bool) {
	if !p.held {
		return "", false
	}
	p.held = false
	p.token++
	return p.id, true
}

// Fire reports the held id if token still belongs to the active press.
// A successful Fire consumes the press.
func (p *Press) Fire(token uint64) (string, bool) {
	if !p.held || token != p.token {
		return "", false
	}
	p.held = false
	p.token++
	return p.id, true
}

// Held reports whether a press is in progress.
func (p *Press) Held() bool { return p.held }

// Target is the id under the held press, or "" if none.
func (p *Press) Target() string {
	if !p.held {
		return ""
	}
	return p.id
}
