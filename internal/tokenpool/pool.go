// Package tokenpool manages a fixed set of access tokens with per-token
// rate-limit cool-downs and round-robin rotation.
package tokenpool

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Pool serves tokens in circular order, skipping any that are cooling down
// after a rate-limit signal. It is owned and mutated by a single worker, so
// no locking is done here.
type Pool struct {
	tokens   []string
	cooldown time.Duration
	limited  map[string]time.Time
	cursor   int
	now      func() time.Time
	logger   hclog.Logger
}

// New creates a pool over the given tokens. The token list is fixed for the
// lifetime of the pool.
func New(tokens []string, cooldown time.Duration, logger hclog.Logger) (*Pool, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no access tokens provided")
	}
	return &Pool{
		tokens:   tokens,
		cooldown: cooldown,
		limited:  make(map[string]time.Time),
		now:      time.Now,
		logger:   logger,
	}, nil
}

// NextAvailable returns the next token whose cool-down has expired, advancing
// the rotation cursor past every probed entry. It probes each token at most
// once; if all are cooling down it returns false without blocking.
func (p *Pool) NextAvailable() (string, bool) {
	now := p.now()
	for i := 0; i < len(p.tokens); i++ {
		token := p.tokens[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.tokens)

		if expiry, ok := p.limited[token]; ok {
			if expiry.After(now) {
				continue
			}
			delete(p.limited, token)
		}
		return token, true
	}
	return "", false
}

// MarkRateLimited puts the token into cool-down until now + the configured
// cool-down duration.
func (p *Pool) MarkRateLimited(token string) {
	expiry := p.now().Add(p.cooldown)
	p.limited[token] = expiry
	p.logger.Warn("token rate limited, cooling down",
		"token", Mask(token), "until", expiry.Format(time.RFC3339))
}

// Size returns the number of tokens in the pool.
func (p *Pool) Size() int {
	return len(p.tokens)
}

// Cooldown returns the configured cool-down duration.
func (p *Pool) Cooldown() time.Duration {
	return p.cooldown
}

// Mask returns a token representation safe for logs, keeping only the tail.
func Mask(token string) string {
	if len(token) <= 4 {
		return "..."
	}
	return "..." + token[len(token)-4:]
}
