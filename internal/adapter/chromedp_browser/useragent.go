package chromedp_browser

import "sync"

// userAgentRotator hands out user agents round-robin.
type userAgentRotator struct {
	mu     sync.Mutex
	agents []string
	index  int
}

func newUserAgentRotator(agents []string) *userAgentRotator {
	return &userAgentRotator{agents: agents}
}

// next returns the next user agent, or "" when none are configured.
func (r *userAgentRotator) next() string {
	if len(r.agents) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ua := r.agents[r.index]
	r.index = (r.index + 1) % len(r.agents)
	return ua
}
