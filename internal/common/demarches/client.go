// internal/common/demarches/client.go
package demarches

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	httpclient "dms-workers/internal/common/http"
	"dms-workers/internal/common/validation"
	"dms-workers/internal/dms"
)

// Config locates the two upstream APIs.
type Config struct {
	LegacyBaseURL string
	GraphQLURL    string
}

// Client talks to the legacy REST API and the GraphQL API of Démarches
// Simplifiées. It implements dms.PageFetcher and dms.DetailFetcher.
type Client struct {
	legacyBaseURL string
	graphqlURL    string
	http          *httpclient.Client
}

var (
	_ dms.PageFetcher   = (*Client)(nil)
	_ dms.DetailFetcher = (*Client)(nil)
)

func NewClient(cfg Config, hc *httpclient.Client) (*Client, error) {
	if cfg.LegacyBaseURL == "" || cfg.GraphQLURL == "" {
		return nil, fmt.Errorf("%w: api urls", dms.ErrMissingConfiguration)
	}
	return &Client{
		legacyBaseURL: strings.TrimRight(cfg.LegacyBaseURL, "/"),
		graphqlURL:    cfg.GraphQLURL,
		http:          hc,
	}, nil
}

// FetchPage reads one page of a procedure's application listing.
func (c *Client) FetchPage(ctx context.Context, procedureID int, token string, page, pageSize int) (*dms.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("resultats_par_page", strconv.Itoa(pageSize))
	endpoint := fmt.Sprintf("%s/procedures/%d/dossiers?%s", c.legacyBaseURL, procedureID, query.Encode())

	body, err := c.http.GetJSON(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := decode(listSchema, body, &resp); err != nil {
		return nil, err
	}

	result := &dms.Page{
		TotalPages:   resp.Pagination.TotalPages,
		Applications: make([]dms.ApplicationSummary, 0, len(resp.Dossiers)),
	}
	for _, d := range resp.Dossiers {
		result.Applications = append(result.Applications, dms.ApplicationSummary{
			ID:        d.ID,
			State:     dms.ApplicationState(d.State),
			UpdatedAt: d.UpdatedAt,
		})
	}
	return result, nil
}

func (c *Client) FetchLegacyApplication(ctx context.Context, procedureID, applicationID int, token string) (*dms.LegacyApplication, error) {
	endpoint := fmt.Sprintf("%s/procedures/%d/dossiers/%d", c.legacyBaseURL, procedureID, applicationID)

	body, err := c.http.GetJSON(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := decode(detailSchema, body, &resp); err != nil {
		return nil, err
	}
	return resp.Dossier.toDomain(), nil
}

func (c *Client) FetchBankInformationApplication(ctx context.Context, applicationID int, token string) (*dms.BankInformationApplication, error) {
	dossier, err := c.fetchDossier(ctx, "getBankInformationApplication", bankInformationQuery, applicationID, token)
	if err != nil {
		return nil, err
	}
	return dossier.toBankInformation(), nil
}

func (c *Client) FetchBeneficiaryApplication(ctx context.Context, applicationNumber int, token string) (*dms.BeneficiaryApplication, error) {
	dossier, err := c.fetchDossier(ctx, "getBeneficiaryApplication", beneficiaryQuery, applicationNumber, token)
	if err != nil {
		return nil, err
	}
	return dossier.toBeneficiary(), nil
}

func (c *Client) fetchDossier(ctx context.Context, operation, query string, number int, token string) (*gqlDossier, error) {
	body, err := c.http.PostJSON(ctx, c.graphqlURL, token, graphQLRequest{
		Query:         query,
		OperationName: operation,
		Variables:     map[string]interface{}{"dossierNumber": number},
	})
	if err != nil {
		return nil, err
	}

	var resp graphQLResponse
	if err := decode(graphQLEnvelopeSchema, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{Operation: operation}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return nil, gqlErr
	}

	var data dossierData
	if err := decode(graphQLDossierSchema, resp.Data, &data); err != nil {
		return nil, err
	}
	return data.Dossier, nil
}

// decode validates body against schema before unmarshalling it into out.
func decode(schema *validation.Schema, body []byte, out interface{}) error {
	result, err := schema.ValidateBytes(body)
	if err != nil {
		return fmt.Errorf("decode %s: %w", schema.Name(), err)
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("decode %s: %w", schema.Name(), err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", schema.Name(), err)
	}
	return nil
}
