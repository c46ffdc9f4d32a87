package graphql

import (
	gql "github.com/Khan/genqlient/graphql"

	"github.com/okian/enroll/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithDoer replaces the HTTP doer used to reach the backend.
func WithDoer(d gql.Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithLogger sets the logger used for backend call diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
