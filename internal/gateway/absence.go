package gateway

import (
	"context"
	"fmt"
	"net/http"
)

type absenceHTTP struct {
	client
}

// NewAbsenceHTTP returns the HTTP implementation of the absence gateway.
func NewAbsenceHTTP(baseURL string, httpClient *http.Client) AbsenceGateway {
	return &absenceHTTP{client: newClient(baseURL, httpClient)}
}

func (g *absenceHTTP) Approve(ctx context.Context, absenceID, approverNo int64) error {
	body := map[string]interface{}{"approver_no": approverNo}
	return g.postJSON(ctx, fmt.Sprintf("/api/absences/%d/approve", absenceID), body, nil)
}

func (g *absenceHTTP) Reject(ctx context.Context, absenceID, approverNo int64, rejectComment string) error {
	body := map[string]interface{}{
		"approver_no":    approverNo,
		"reject_comment": rejectComment,
	}
	return g.postJSON(ctx, fmt.Sprintf("/api/absences/%d/reject", absenceID), body, nil)
}
