package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"schallwerk/apperr"
	"schallwerk/logger"
	"schallwerk/model"
)

const apiVersion = "2024-04"

// Client is a thin Shopify Storefront GraphQL client. One query method does
// the wire work; every operation is a query plus a typed result struct.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the given shop domain.
func NewClient(domain, storefrontToken string) *Client {
	return &Client{
		endpoint:   fmt.Sprintf("https://%s/api/%s/graphql.json", domain, apiVersion),
		token:      storefrontToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint overrides the GraphQL endpoint. Used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// query performs one GraphQL round trip and decodes data into out.
func (c *Client) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	buf, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to encode shopify request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to build shopify request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "shopify request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apperr.Ef(apperr.KindUnavailable, "shopify returned status %d", resp.StatusCode)
	}

	var gqlResp gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to decode shopify response", err)
	}
	if len(gqlResp.Errors) > 0 {
		logger.Warn("[Shopify] graphql error", logger.String("message", gqlResp.Errors[0].Message))
		return apperr.Ef(apperr.KindUnavailable, "shopify error: %s", gqlResp.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "failed to decode shopify data", err)
		}
	}
	return nil
}

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
    }
    userErrors {
      field
      message
    }
  }
}`

// CartLine is one item going into a merch checkout.
type CartLine struct {
	VariantID string
	Quantity  int
}

// CreateCart creates a storefront cart tagged with the event and returns the
// hosted checkout URL the parent is redirected to.
func (c *Client) CreateCart(ctx context.Context, eventID string, lines []CartLine) (string, error) {
	if len(lines) == 0 {
		return "", apperr.E(apperr.KindInvalid, "cart must contain at least one item")
	}

	gqlLines := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return "", apperr.E(apperr.KindInvalid, "item quantity must be positive")
		}
		gqlLines = append(gqlLines, map[string]interface{}{
			"merchandiseId": l.VariantID,
			"quantity":      l.Quantity,
		})
	}

	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"lines": gqlLines,
			"attributes": []map[string]string{
				{"key": "eventId", "value": eventID},
			},
		},
	}

	var result struct {
		CartCreate struct {
			Cart struct {
				ID          string `json:"id"`
				CheckoutURL string `json:"checkoutUrl"`
			} `json:"cart"`
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := c.query(ctx, cartCreateMutation, vars, &result); err != nil {
		return "", err
	}
	if len(result.CartCreate.UserErrors) > 0 {
		return "", apperr.Ef(apperr.KindInvalid, "shopify rejected the cart: %s", result.CartCreate.UserErrors[0].Message)
	}
	if result.CartCreate.Cart.CheckoutURL == "" {
		return "", apperr.E(apperr.KindUnavailable, "shopify returned no checkout url")
	}
	return result.CartCreate.Cart.CheckoutURL, nil
}

const ordersQuery = `
query orders($query: String!, $first: Int!) {
  orders(first: $first, query: $query) {
    edges {
      node {
        id
        name
        createdAt
        customAttributes {
          key
          value
        }
        lineItems(first: 50) {
          edges {
            node {
              product {
                productType
              }
            }
          }
        }
      }
    }
  }
}`

// ListOrdersForEvents fetches the shop's recent orders and maps each onto
// the event it was placed for (via the eventId cart attribute) and a task
// kind (via the product type). Orders without an event tag are skipped.
func (c *Client) ListOrdersForEvents(ctx context.Context, limit int) ([]*model.ShopifyOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	vars := map[string]interface{}{
		"query": "status:open",
		"first": limit,
	}

	var result struct {
		Orders struct {
			Edges []struct {
				Node struct {
					ID               string    `json:"id"`
					Name             string    `json:"name"`
					CreatedAt        time.Time `json:"createdAt"`
					CustomAttributes []struct {
						Key   string `json:"key"`
						Value string `json:"value"`
					} `json:"customAttributes"`
					LineItems struct {
						Edges []struct {
							Node struct {
								Product struct {
									ProductType string `json:"productType"`
								} `json:"product"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"lineItems"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := c.query(ctx, ordersQuery, vars, &result); err != nil {
		return nil, err
	}

	orders := make([]*model.ShopifyOrder, 0, len(result.Orders.Edges))
	for _, edge := range result.Orders.Edges {
		node := edge.Node

		eventID := ""
		for _, attr := range node.CustomAttributes {
			if attr.Key == "eventId" {
				eventID = attr.Value
				break
			}
		}
		if eventID == "" {
			continue
		}

		kind := model.TaskClothing
		for _, li := range node.LineItems.Edges {
			if li.Node.Product.ProductType == "paper" {
				kind = model.TaskPaper
				break
			}
		}

		orders = append(orders, &model.ShopifyOrder{
			ID:        node.ID,
			Name:      node.Name,
			EventID:   eventID,
			Kind:      kind,
			CreatedAt: node.CreatedAt,
		})
	}
	return orders, nil
}
