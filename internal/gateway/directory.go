package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type directoryHTTP struct {
	client
}

// NewDirectoryHTTP returns the HTTP implementation of the directory gateway.
func NewDirectoryHTTP(baseURL string, httpClient *http.Client) DirectoryGateway {
	return &directoryHTTP{client: newClient(baseURL, httpClient)}
}

func (g *directoryHTTP) GetUsers(ctx context.Context, employeeNos []int64) ([]DirectoryUser, error) {
	if len(employeeNos) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(employeeNos))
	for _, no := range employeeNos {
		ids = append(ids, strconv.FormatInt(no, 10))
	}

	var users []DirectoryUser
	query := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := g.getJSON(ctx, "/api/users", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (g *directoryHTTP) GetHRRoleHolder(ctx context.Context) (*DirectoryUser, error) {
	var users []DirectoryUser
	query := url.Values{"role": {"HR"}}
	if err := g.getJSON(ctx, "/api/users", query, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
