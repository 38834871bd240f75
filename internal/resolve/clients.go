package resolve

import (
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/google/uuid"
)

// Clients resolves row identities to clients owned by one operator and
// creates clients for identities it has not seen. A created client stays
// private to its row until Commit makes it pending.
type Clients struct {
	scope      *model.Client
	byNational map[string]*model.Client
	byTax      map[string]*model.Client
	byID       map[string]*model.Client
	newID      func() string
	now        func() time.Time
	ownerID    string
	pending    []*model.Client
}

// NewClients indexes the operator's clients. When scope is non-nil every row
// resolves to it and no clients are created.
func NewClients(ownerID string, existing []model.Client, scope *model.Client) *Clients {
	c := &Clients{
		scope:      scope,
		ownerID:    ownerID,
		byNational: make(map[string]*model.Client, len(existing)),
		byTax:      make(map[string]*model.Client, len(existing)),
		byID:       make(map[string]*model.Client, len(existing)),
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for i := range existing {
		c.index(&existing[i])
	}
	return c
}

// index keeps the first client seen for each identifier.
func (c *Clients) index(client *model.Client) {
	c.byID[client.ID] = client
	if client.NationalID != "" {
		if _, dup := c.byNational[client.NationalID]; !dup {
			c.byNational[client.NationalID] = client
		}
	}
	if client.TaxID != "" {
		if _, dup := c.byTax[client.TaxID]; !dup {
			c.byTax[client.TaxID] = client
		}
	}
}

// Scoped reports whether every row resolves to a preselected client.
func (c *Clients) Scoped() bool {
	return c.scope != nil
}

// Lookup finds an existing or pending client by national id, then tax id.
func (c *Clients) Lookup(f rowparse.ClientFields) *model.Client {
	if c.scope != nil {
		return c.scope
	}
	if f.NationalID != "" {
		if client, ok := c.byNational[f.NationalID]; ok {
			return client
		}
	}
	if f.TaxID != "" {
		if client, ok := c.byTax[f.TaxID]; ok {
			return client
		}
	}
	return nil
}

// Resolve returns the client for the row, creating one when the identity is
// new. created is true only for a client made by this call; such a client is
// neither indexed nor pending until it is passed to Commit.
func (c *Clients) Resolve(f rowparse.ClientFields) (client *model.Client, created bool, err error) {
	if client := c.Lookup(f); client != nil {
		return client, false, nil
	}
	if !f.HasIdentifier() {
		return nil, false, &ResolutionError{Kind: KindClient, Reason: "has no national id or tax id"}
	}
	if f.Name == "" {
		return nil, false, &ResolutionError{Kind: KindClient, Input: identity(f), Reason: "not found and the row has no name to create it"}
	}

	client = &model.Client{
		ID:         c.newID(),
		OwnerID:    c.ownerID,
		Name:       f.Name,
		NationalID: f.NationalID,
		TaxID:      f.TaxID,
		Phone:      f.Phone,
		Email:      f.Email,
		Address:    f.Address,
		CreatedAt:  c.now(),
	}
	return client, true, nil
}

// Commit makes a client created by Resolve visible to later rows and queues
// it for writing. Nil and already known clients are ignored.
func (c *Clients) Commit(client *model.Client) {
	if client == nil {
		return
	}
	if _, known := c.byID[client.ID]; known {
		return
	}
	c.index(client)
	c.pending = append(c.pending, client)
}

// ByID returns a known client, existing or pending.
func (c *Clients) ByID(id string) (*model.Client, bool) {
	if c.scope != nil && c.scope.ID == id {
		return c.scope, true
	}
	client, ok := c.byID[id]
	return client, ok
}

// Pending returns the clients created during the run in creation order.
func (c *Clients) Pending() []model.Client {
	out := make([]model.Client, len(c.pending))
	for i, p := range c.pending {
		out[i] = *p
	}
	return out
}

func identity(f rowparse.ClientFields) string {
	if f.NationalID != "" {
		return f.NationalID
	}
	return f.TaxID
}

// OwnerID returns the operator the clients belong to.
func (c *Clients) OwnerID() string {
	return c.ownerID
}
