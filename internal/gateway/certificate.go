package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type certificateHTTP struct {
	client
}

// NewCertificateHTTP returns the HTTP implementation of the certificate gateway.
func NewCertificateHTTP(baseURL string, httpClient *http.Client) CertificateGateway {
	return &certificateHTTP{client: newClient(baseURL, httpClient)}
}

func (g *certificateHTTP) SetApproved(ctx context.Context, certificateID, approverNo int64, approverName string) error {
	body := map[string]interface{}{
		"approver_no":   approverNo,
		"approver_name": approverName,
	}
	return g.postJSON(ctx, fmt.Sprintf("/api/certificates/%d/approve", certificateID), body, nil)
}

func (g *certificateHTTP) SetRejected(ctx context.Context, certificateID int64, rejectComment string, approverNo int64, approverName string) error {
	body := map[string]interface{}{
		"reject_comment": rejectComment,
		"approver_no":    approverNo,
		"approver_name":  approverName,
	}
	return g.postJSON(ctx, fmt.Sprintf("/api/certificates/%d/reject", certificateID), body, nil)
}

func (g *certificateHTTP) HasValidCertificate(ctx context.Context, applicantNo int64, certificateType string) (bool, error) {
	var result struct {
		Valid bool `json:"valid"`
	}
	query := url.Values{
		"applicant": {strconv.FormatInt(applicantNo, 10)},
		"type":      {certificateType},
	}
	if err := g.getJSON(ctx, "/api/certificates/valid", query, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}
