package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuitang/agreements-e2e/internal/errs"
)

const (
	consolidatedPrefix = "consolidated/"
	outputsPrefix      = "outputs/"
	jsonSuffix         = ".json"

	// MaxDocumentIDLength bounds document IDs so keys stay well under S3's limit.
	MaxDocumentIDLength = 255

	outputTimeLayout = "20060102T150405Z"
)

// ErrDocumentNotFound is returned when no consolidated document exists for an ID.
var ErrDocumentNotFound = errs.New(errs.NotFound, "document not found")

// Obligation is one obligation extracted from a document.
type Obligation struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Party       string `json:"party"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	SourcePage  int    `json:"source_page,omitempty"`
}

// SearchText is the text a query is matched against.
func (o Obligation) SearchText() string {
	return strings.Join([]string{o.Category, o.Party, o.Description, o.Amount, o.Frequency}, " ")
}

// Document is the consolidated obligations of one processed document.
type Document struct {
	DocumentID  string       `json:"document_id"`
	ProcessedAt time.Time    `json:"processed_at"`
	Obligations []Obligation `json:"obligations"`
}

// ValidateDocumentID rejects IDs that cannot be used as a single key segment.
func ValidateDocumentID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errs.New(errs.InvalidArgument, "document_id is required")
	case len(id) > MaxDocumentIDLength:
		return errs.Newf(errs.InvalidArgument, "document_id exceeds %d bytes", MaxDocumentIDLength)
	case strings.ContainsAny(id, "/\\") || strings.Contains(id, ".."):
		return errs.Newf(errs.InvalidArgument, "document_id %q must not contain path separators", id)
	}
	return nil
}

// ConsolidatedKey is the object key of a document's consolidated JSON.
func ConsolidatedKey(documentID string) string {
	return consolidatedPrefix + documentID + jsonSuffix
}

// PutDocument stores doc as consolidated JSON, replacing any previous version.
func (c *Client) PutDocument(ctx context.Context, doc Document) error {
	if err := ValidateDocumentID(doc.DocumentID); err != nil {
		return err
	}
	if doc.Obligations == nil {
		doc.Obligations = []Obligation{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", doc.DocumentID, err)
	}
	return c.PutObject(ctx, ConsolidatedKey(doc.DocumentID), data, "application/json")
}

// GetDocument loads the consolidated document for documentID.
// Returns ErrDocumentNotFound when it was never processed.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	if err := ValidateDocumentID(documentID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	data, err := c.GetObject(ctx, ConsolidatedKey(documentID))
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %q: %w", documentID, err)
	}
	return &doc, nil
}

// ListDocumentIDs returns the IDs of all processed documents.
func (c *Client) ListDocumentIDs(ctx context.Context) ([]string, error) {
	keys, err := c.ListKeys(ctx, consolidatedPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := trimKey(key, consolidatedPrefix, jsonSuffix); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SaveOutput writes v as JSON under outputs/ and returns its key.
func (c *Client) SaveOutput(ctx context.Context, now time.Time, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	key := fmt.Sprintf("%s%s-%s%s", outputsPrefix, now.UTC().Format(outputTimeLayout), uuid.NewString(), jsonSuffix)
	if err := c.PutObject(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
