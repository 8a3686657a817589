package cli

import (
	"fmt"

	actx "go.hackfix.me/ticketd/app/context"
	"go.hackfix.me/ticketd/web/server/api/v1"
)

// Routes lists the HTTP routes and their access level.
type Routes struct {
	Protected bool `help:"Only list routes that require authorization."`
}

// Run the routes command.
func (c *Routes) Run(appCtx *actx.Context) error {
	routes := api.New(appCtx, appCtx.Logger).Routes()

	data := make([][]string, 0, len(routes))
	for _, rt := range routes {
		if c.Protected && !rt.Protected {
			continue
		}
		access := "public"
		if rt.Protected {
			access = "protected"
		}
		data = append(data, []string{rt.Method, rt.Pattern, access})
	}

	if err := renderTable([]string{"Method", "Pattern", "Access"}, data, appCtx.Stdout); err != nil {
		return fmt.Errorf("failed rendering routes table: %w", err)
	}

	return nil
}
