// Package metafield persists issue lists in a JSON metafield on the owning
// resource, through the admin GraphQL API.
package metafield

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/shopify"
	"github.com/idilsaglam/issuetracker/internal/store"
)

const (
	DefaultNamespace = "$app"
	DefaultKey       = "issues"
	DefinitionName   = "Tracked Issues"
)

const loadQuery = `query Product($id: ID!, $namespace: String!, $key: String!) {
  product(id: $id) {
    metafield(namespace: $namespace, key: $key) {
      value
    }
  }
}`

const saveMutation = `mutation SetMetafield($ownerId: ID!, $namespace: String!, $key: String!, $type: String!, $value: String!) {
  metafieldsSet(metafields: [{ownerId: $ownerId, namespace: $namespace, key: $key, type: $type, value: $value}]) {
    metafields {
      id
      namespace
      key
    }
    userErrors {
      field
      message
      code
    }
  }
}`

// The definition is created alongside the write so merchants can see the
// field in the admin. Its userErrors (typically "already exists") are ignored.
const saveWithDefinitionMutation = `mutation SetMetafield($ownerId: ID!, $namespace: String!, $key: String!, $type: String!, $value: String!, $name: String!) {
  metafieldDefinitionCreate(
    definition: {namespace: $namespace, key: $key, name: $name, ownerType: PRODUCT, type: $type, access: {admin: MERCHANT_READ_WRITE}}
  ) {
    createdDefinition {
      id
    }
  }
  metafieldsSet(metafields: [{ownerId: $ownerId, namespace: $namespace, key: $key, type: $type, value: $value}]) {
    userErrors {
      field
      message
      code
    }
  }
}`

// UserError is one entry of a mutation's userErrors.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
}

// UserErrors is returned when metafieldsSet rejects the write.
type UserErrors []UserError

func (e UserErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ue := range e {
		if len(ue.Field) > 0 {
			msgs = append(msgs, strings.Join(ue.Field, ".")+": "+ue.Message)
		} else {
			msgs = append(msgs, ue.Message)
		}
	}
	return "metafieldsSet: " + strings.Join(msgs, "; ")
}

// Store is a store.Store over a GraphQL executor.
type Store struct {
	exec             shopify.Executor
	namespace        string
	key              string
	ensureDefinition bool
	logger           *slog.Logger
}

type Option func(*Store)

// WithSlot overrides the namespace/key pair.
func WithSlot(namespace, key string) Option {
	return func(s *Store) {
		if namespace != "" {
			s.namespace = namespace
		}
		if key != "" {
			s.key = key
		}
	}
}

// WithDefinition creates the metafield definition on every save.
func WithDefinition(on bool) Option {
	return func(s *Store) { s.ensureDefinition = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(exec shopify.Executor, opts ...Option) *Store {
	s := &Store{
		exec:      exec,
		namespace: DefaultNamespace,
		key:       DefaultKey,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Store = (*Store)(nil)

type loadData struct {
	Product *struct {
		Metafield *struct {
			Value string `json:"value"`
		} `json:"metafield"`
	} `json:"product"`
}

// Load reads the metafield value. A missing metafield is an empty list; a
// missing product is store.ErrResourceNotFound.
func (s *Store) Load(ctx context.Context, resourceID string) ([]model.Issue, error) {
	resp, err := s.exec.Execute(ctx, shopify.Request{
		Query: loadQuery,
		Variables: map[string]any{
			"id":        resourceID,
			"namespace": s.namespace,
			"key":       s.key,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load issues for %s: %w", resourceID, err)
	}
	var data loadData
	if err := resp.Decode(&data); err != nil {
		return nil, fmt.Errorf("load issues for %s: %w", resourceID, err)
	}
	if data.Product == nil {
		return nil, fmt.Errorf("load issues for %s: %w", resourceID, store.ErrResourceNotFound)
	}
	if data.Product.Metafield == nil {
		s.logger.Debug("no issues metafield yet", "resource", resourceID)
		return []model.Issue{}, nil
	}
	issues, err := model.Decode(data.Product.Metafield.Value)
	if err != nil {
		return nil, fmt.Errorf("load issues for %s: %w", resourceID, err)
	}
	return issues, nil
}

type saveData struct {
	MetafieldsSet *struct {
		UserErrors UserErrors `json:"userErrors"`
	} `json:"metafieldsSet"`
}

// Save overwrites the metafield with the full list in one call.
func (s *Store) Save(ctx context.Context, resourceID string, issues []model.Issue) error {
	value, err := model.Encode(issues)
	if err != nil {
		return fmt.Errorf("save issues for %s: %w", resourceID, err)
	}
	vars := map[string]any{
		"ownerId":   resourceID,
		"namespace": s.namespace,
		"key":       s.key,
		"type":      "json",
		"value":     value,
	}
	query := saveMutation
	if s.ensureDefinition {
		query = saveWithDefinitionMutation
		vars["name"] = DefinitionName
	}

	resp, err := s.exec.Execute(ctx, shopify.Request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("save issues for %s: %w", resourceID, err)
	}
	var data saveData
	if err := resp.Decode(&data); err != nil {
		return fmt.Errorf("save issues for %s: %w", resourceID, err)
	}
	if data.MetafieldsSet == nil {
		return fmt.Errorf("save issues for %s: %w", resourceID, errors.New("metafieldsSet missing from response"))
	}
	if len(data.MetafieldsSet.UserErrors) > 0 {
		return fmt.Errorf("save issues for %s: %w", resourceID, data.MetafieldsSet.UserErrors)
	}
	s.logger.Debug("saved issues", "resource", resourceID, "count", len(issues))
	return nil
}
