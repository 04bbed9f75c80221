package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/edachat/internal/common"
)

// DefaultRefreshWindow is how close to expiry a token gets replaced ahead
// of time.
const DefaultRefreshWindow = 120 * time.Second

// Policy decides expiry questions about access tokens. The zero value is
// not usable; build one with NewPolicy.
type Policy struct {
	Now           func() time.Time
	RefreshWindow time.Duration
	parser        *jwt.Parser
}

func NewPolicy() *Policy {
	return &Policy{
		Now:           time.Now,
		RefreshWindow: DefaultRefreshWindow,
		parser:        jwt.NewParser(),
	}
}

// Expiry decodes the exp claim. A token that is not a JWT or has no exp
// yields common.ErrInvalidToken.
func (p *Policy) Expiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: empty", common.ErrInvalidToken)
	}
	parser := p.parser
	if parser == nil {
		parser = jwt.NewParser()
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", common.ErrInvalidToken)
	}
	return exp.Time, nil
}

// IsExpired is true when now >= exp, and for any token that cannot be
// decoded.
func (p *Policy) IsExpired(token string) bool {
	exp, err := p.Expiry(token)
	if err != nil {
		return true
	}
	return !p.now().Before(exp)
}

// TimeRemaining is exp - now, never negative. Undecodable tokens have none.
func (p *Policy) TimeRemaining(token string) time.Duration {
	exp, err := p.Expiry(token)
	if err != nil {
		return 0
	}
	return max(exp.Sub(p.now()), 0)
}

// ShouldRefresh reports whether a present token is within the refresh
// window. An empty token never needs a proactive refresh.
func (p *Policy) ShouldRefresh(token string) bool {
	if token == "" {
		return false
	}
	return p.TimeRemaining(token) < p.window()
}

func (p *Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Policy) window() time.Duration {
	if p.RefreshWindow <= 0 {
		return DefaultRefreshWindow
	}
	return p.RefreshWindow
}
