// Package query answers keyword queries over the obligations extracted from
// processed documents.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kuitang/agreements-e2e/internal/docstore"
	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/obs"
)

// DefaultTerm is used when a query is empty or only stopwords.
const DefaultTerm = "utilities"

// Store is the document storage the query service reads and writes.
type Store interface {
	PutDocument(ctx context.Context, doc docstore.Document) error
	GetDocument(ctx context.Context, documentID string) (*docstore.Document, error)
	ListDocumentIDs(ctx context.Context) ([]string, error)
	SaveOutput(ctx context.Context, now time.Time, v any) (string, error)
}

// Request is the body of POST /query.
type Request struct {
	Query       string   `json:"query"`
	SaveOutput  bool     `json:"save_output"`
	DocumentIDs []string `json:"document_ids"`
}

// DocumentResult holds the matching obligations of one searched document.
type DocumentResult struct {
	DocumentID       string                `json:"document_id"`
	Obligations      []docstore.Obligation `json:"obligations"`
	ObligationsFound int                   `json:"obligations_found"`
}

// Response is the body returned by POST /query.
type Response struct {
	Query                  string           `json:"query"`
	Terms                  []string         `json:"terms"`
	DefaultQueryApplied    bool             `json:"default_query_applied"`
	Results                []DocumentResult `json:"results"`
	TotalObligationsFound  int              `json:"total_obligations_found"`
	TotalDocumentsSearched int              `json:"total_documents_searched"`
	SkippedDocumentIDs     []string         `json:"skipped_document_ids,omitempty"`
	OutputKey              string           `json:"output_key,omitempty"`
}

// ProcessRequest is the body of POST /process: the extracted obligations of
// one document, stored as its consolidated JSON.
type ProcessRequest struct {
	DocumentID  string                `json:"document_id"`
	Obligations []docstore.Obligation `json:"obligations"`
}

// ProcessResponse acknowledges a processed document.
type ProcessResponse struct {
	DocumentID      string `json:"document_id"`
	ObligationCount int    `json:"obligation_count"`
	ConsolidatedKey string `json:"consolidated_key"`
}

// Service runs obligation queries.
type Service struct {
	store       Store
	defaultTerm string
	maxTerms    int
	now         func() time.Time
}

// NewService creates a query service. Blank defaultTerm selects DefaultTerm.
func NewService(store Store, defaultTerm string, maxTerms int) *Service {
	if strings.TrimSpace(defaultTerm) == "" {
		defaultTerm = DefaultTerm
	}
	return &Service{store: store, defaultTerm: defaultTerm, maxTerms: maxTerms, now: time.Now}
}

// Process stores the consolidated obligations of a document.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if err := docstore.ValidateDocumentID(req.DocumentID); err != nil {
		return nil, err
	}
	for i := range req.Obligations {
		if req.Obligations[i].ID == "" {
			req.Obligations[i].ID = fmt.Sprintf("OB-%03d", i+1)
		}
	}

	doc := docstore.Document{
		DocumentID:  req.DocumentID,
		ProcessedAt: s.now().UTC(),
		Obligations: req.Obligations,
	}
	if err := s.store.PutDocument(ctx, doc); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to store document", err)
	}

	obs.From(ctx).Info("document_processed", "document_id", doc.DocumentID, "obligations", len(doc.Obligations))
	return &ProcessResponse{
		DocumentID:      doc.DocumentID,
		ObligationCount: len(doc.Obligations),
		ConsolidatedKey: docstore.ConsolidatedKey(doc.DocumentID),
	}, nil
}

// Query matches the request terms against each requested document. An
// obligation matches when every term prefixes one of its words. Documents that
// were never processed are skipped and not counted as searched.
func (s *Service) Query(ctx context.Context, req Request) (*Response, error) {
	logger := obs.From(ctx)

	q := strings.TrimSpace(req.Query)
	terms := Terms(q, s.maxTerms)
	resp := &Response{Query: q, Results: []DocumentResult{}}
	if len(terms) == 0 {
		resp.Query = s.defaultTerm
		resp.DefaultQueryApplied = true
		terms = Terms(s.defaultTerm, s.maxTerms)
	}
	resp.Terms = terms

	ids := req.DocumentIDs
	if len(ids) == 0 {
		all, err := s.store.ListDocumentIDs(ctx)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to list documents", err)
		}
		ids = all
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		doc, err := s.store.GetDocument(ctx, id)
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			resp.SkippedDocumentIDs = append(resp.SkippedDocumentIDs, id)
			continue
		}
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to load document", err)
		}

		result := DocumentResult{DocumentID: doc.DocumentID, Obligations: []docstore.Obligation{}}
		for _, ob := range doc.Obligations {
			if matchesAll(ob.SearchText(), terms) {
				result.Obligations = append(result.Obligations, ob)
			}
		}
		result.ObligationsFound = len(result.Obligations)
		resp.Results = append(resp.Results, result)
		resp.TotalObligationsFound += result.ObligationsFound
		resp.TotalDocumentsSearched++
	}

	if req.SaveOutput {
		key, err := s.store.SaveOutput(ctx, s.now(), resp)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to save output", err)
		}
		resp.OutputKey = key
	}

	logger.Info("obligations_query",
		"terms", len(terms),
		"default_applied", resp.DefaultQueryApplied,
		"documents_searched", resp.TotalDocumentsSearched,
		"documents_skipped", len(resp.SkippedDocumentIDs),
		"obligations_found", resp.TotalObligationsFound,
	)
	return resp, nil
}
