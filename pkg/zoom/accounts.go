package zoom

import (
	"context"

	"github.com/zoomkit/zoomapi/pkg/model"
)

type managedDomains struct {
	TotalRecords int
	Domains      []model.ManagedDomain
}

// GetManagedDomains maps each managed domain of accountID ("" means the caller's
// account) to its verification status.
func (c *Client) GetManagedDomains(ctx context.Context, creds CredentialSet, accountID string) (map[string]string, error) {
	target, err := c.endpoint("accounts", orMe(accountID), "managed_domains")
	if err != nil {
		return nil, err
	}
	var resp managedDomains
	if err := c.exec.GetJSON(ctx, target, creds, nil, &resp); err != nil {
		return nil, err
	}
	domains := make(map[string]string, len(resp.Domains))
	for _, d := range resp.Domains {
		domains[d.Domain] = d.Status
	}
	return domains, nil
}
