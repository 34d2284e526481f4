package client

import (
	"context"
	"net/http"
	"net/url"
)

// Email domain states, driven by DNS checks upstream.
const (
	DomainUnconfigured        = "unconfigured"
	DomainPendingVerification = "pending_verification"
	DomainVerified            = "verified"
	DomainFailed              = "failed"
)

// DomainStatus is a project's sending-domain authorization.
type DomainStatus struct {
	Domain string `json:"domain"`
	Status string `json:"status"`
	// Records are the DNS records the customer must publish.
	Records []DNSRecord `json:"records,omitempty"`
}

// DNSRecord is one record to publish for domain authorization.
type DNSRecord struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EmailDomains triggers sending-domain verification.
type EmailDomains struct {
	client *Client
}

// EmailDomains returns the email domain controller.
func (c *Client) EmailDomains() *EmailDomains {
	return &EmailDomains{client: c}
}

// Status returns the project's domain status, cached per project.
func (e *EmailDomains) Status(ctx context.Context, projectID string) (DomainStatus, error) {
	return Fetch(ctx, e.client.cache, KeyEmailDomain(projectID), func(ctx context.Context) (DomainStatus, error) {
		return callEnvelope[DomainStatus](ctx, e.client, http.MethodGet, domainPath(projectID, ""), nil)
	})
}

// Verify asks upstream to re-run the DNS checks and invalidates the cached
// status. The returned status is upstream's immediate answer, usually
// pending_verification.
func (e *EmailDomains) Verify(ctx context.Context, projectID string) (DomainStatus, error) {
	st, err := callEnvelope[DomainStatus](ctx, e.client, http.MethodPost, domainPath(projectID, "/verify"), nil)
	if err != nil {
		return DomainStatus{}, err
	}
	e.client.cache.Invalidate(KeyEmailDomain(projectID))
	return st, nil
}

func domainPath(projectID, suffix string) string {
	return proxyPath("projects/" + url.PathEscape(projectID) + "/email-domain" + suffix)
}
