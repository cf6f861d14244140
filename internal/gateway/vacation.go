package gateway

import (
	"context"
	"net/http"
)

type vacationHTTP struct {
	client
}

// NewVacationHTTP returns the HTTP implementation of the vacation gateway.
func NewVacationHTTP(baseURL string, httpClient *http.Client) VacationGateway {
	return &vacationHTTP{client: newClient(baseURL, httpClient)}
}

func (g *vacationHTTP) ApplyBalanceChange(ctx context.Context, change BalanceChange) error {
	return g.postJSON(ctx, "/api/vacations/balance-change", change, nil)
}
