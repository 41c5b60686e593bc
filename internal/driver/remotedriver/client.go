// Package remotedriver implements the Driver contract as an HTTP client
// against a cpg-server process, and provides the Server that process
// runs, wrapping whichever backing Driver it was started with (spec
// §4.11).
package remotedriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/schema"
)

// Driver is the HTTP client implementation of driver.Driver. Every
// operation issues one request to baseURL and returns
// *cpgerr.DriverUnavailable on any transport failure or 5xx, per spec
// §7 ("DriverUnavailable ... what the remote driver returns on HTTP
// round-trip failure or 5xx").
type Driver struct {
	baseURL string
	client  *http.Client
}

// New creates a client against a cpg-server listening at baseURL (e.g.
// "http://localhost:8080").
func New(baseURL string) *Driver {
	return &Driver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *Driver) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: method + " " + path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// decode reads resp's JSON body into v and translates non-2xx statuses
// into the matching error type: 422 becomes *cpgerr.SchemaViolation, any
// other failing status becomes *cpgerr.DriverUnavailable.
func decode(op string, resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if v == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return &cpgerr.DriverUnavailable{Op: op, Err: err}
		}
		return nil
	}

	var errBody errorDTO
	_ = json.NewDecoder(resp.Body).Decode(&errBody)

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &cpgerr.SchemaViolation{
			MethodFullName: errBody.MethodFullName,
			Signature:      errBody.Signature,
			File:           errBody.File,
			Detail:         errBody.Detail,
		}
	}
	return &cpgerr.DriverUnavailable{Op: op, Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, errBody.Detail)}
}

func (d *Driver) AddVertex(ctx context.Context, n *driver.Node) error {
	resp, err := d.do(ctx, http.MethodPost, "/v1/vertices", toNodeDTO(n))
	if err != nil {
		return err
	}
	var out nodeDTO
	if err := decode("add vertex", resp, &out); err != nil {
		return err
	}
	n.SetID(out.ID)
	for k, v := range out.Properties {
		n.Set(k, v)
	}
	return nil
}

func (d *Driver) Exists(ctx context.Context, n *driver.Node) (bool, error) {
	if n.ID() == -1 {
		return false, nil
	}
	resp, err := d.do(ctx, http.MethodGet, fmt.Sprintf("/v1/vertices/%d", n.ID()), nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, &cpgerr.DriverUnavailable{Op: "exists", Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return true, nil
}

func (d *Driver) ExistsEdge(ctx context.Context, src, dst *driver.Node, label schema.EdgeKind) (bool, error) {
	if src.ID() == -1 || dst.ID() == -1 {
		return false, nil
	}
	q := url.Values{
		"src":   []string{strconv.FormatInt(src.ID(), 10)},
		"dst":   []string{strconv.FormatInt(dst.ID(), 10)},
		"label": []string{string(label)},
	}
	resp, err := d.do(ctx, http.MethodGet, "/v1/edges/exists?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := decode("exists edge", resp, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (d *Driver) AddEdge(ctx context.Context, src, dst *driver.Node, label schema.EdgeKind, properties map[string]any) error {
	req := addEdgeRequest{Src: toNodeDTO(src), Dst: toNodeDTO(dst), Label: string(label), Properties: properties}
	resp, err := d.do(ctx, http.MethodPost, "/v1/edges", req)
	if err != nil {
		return err
	}
	var out addEdgeResponse
	if err := decode("add edge", resp, &out); err != nil {
		return err
	}
	src.SetID(out.Src.ID)
	dst.SetID(out.Dst.ID)
	return nil
}

func (d *Driver) DeleteVertex(ctx context.Context, n *driver.Node) error {
	resp, err := d.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/vertices/%d", n.ID()), nil)
	if err != nil {
		return err
	}
	return decode("delete vertex", resp, nil)
}

func (d *Driver) DeleteMethod(ctx context.Context, fullName, signature string) error {
	path := fmt.Sprintf("/v1/methods/%s?%s", url.PathEscape(fullName), url.Values{"signature": []string{signature}}.Encode())
	resp, err := d.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return decode("delete method", resp, nil)
}

func (d *Driver) GetMethod(ctx context.Context, fullName, signature string, includeBody bool) (*driver.Subgraph, error) {
	q := url.Values{"signature": []string{signature}}
	if includeBody {
		q.Set("body", "true")
	}
	path := fmt.Sprintf("/v1/methods/%s?%s", url.PathEscape(fullName), q.Encode())
	resp, err := d.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out subgraphDTO
	if err := decode("get method", resp, &out); err != nil {
		return nil, err
	}
	return fromSubgraphDTO(out), nil
}

func (d *Driver) GetProgramStructure(ctx context.Context) (*driver.Subgraph, error) {
	resp, err := d.do(ctx, http.MethodGet, "/v1/program-structure", nil)
	if err != nil {
		return nil, err
	}
	var out subgraphDTO
	if err := decode("get program structure", resp, &out); err != nil {
		return nil, err
	}
	return fromSubgraphDTO(out), nil
}

func (d *Driver) GetNeighbours(ctx context.Context, n *driver.Node) (*driver.Subgraph, error) {
	resp, err := d.do(ctx, http.MethodGet, fmt.Sprintf("/v1/neighbours/%d", n.ID()), nil)
	if err != nil {
		return nil, err
	}
	var out subgraphDTO
	if err := decode("get neighbours", resp, &out); err != nil {
		return nil, err
	}
	return fromSubgraphDTO(out), nil
}

func (d *Driver) GetWholeGraph(ctx context.Context) (*driver.Subgraph, error) {
	resp, err := d.do(ctx, http.MethodGet, "/v1/graph", nil)
	if err != nil {
		return nil, err
	}
	var out subgraphDTO
	if err := decode("get whole graph", resp, &out); err != nil {
		return nil, err
	}
	return fromSubgraphDTO(out), nil
}

func (d *Driver) GetVertexIDs(ctx context.Context, lo, hi int64) ([]int64, error) {
	q := url.Values{"lo": []string{strconv.FormatInt(lo, 10)}, "hi": []string{strconv.FormatInt(hi, 10)}}
	resp, err := d.do(ctx, http.MethodGet, "/v1/vertices?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []int64
	if err := decode("get vertex ids", resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Driver) Clear(ctx context.Context) error {
	resp, err := d.do(ctx, http.MethodPost, "/v1/clear", nil)
	if err != nil {
		return err
	}
	return decode("clear", resp, nil)
}
