package remotedriver

import (
	"jvmcpg/internal/driver"
	"jvmcpg/internal/schema"
)

// nodeDTO is the wire representation of a driver.Node (spec §4.11).
type nodeDTO struct {
	ID         int64          `json:"id"`
	Kind       string         `json:"kind"`
	Properties map[string]any `json:"properties"`
}

// edgeRefDTO is the lean wire representation of an edge inside a
// subgraphDTO, referencing endpoints by id into that same subgraph's
// node list rather than repeating their full bodies.
type edgeRefDTO struct {
	Src        int64          `json:"src"`
	Dst        int64          `json:"dst"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// subgraphDTO is the wire representation of a driver.Subgraph.
type subgraphDTO struct {
	RequestID string       `json:"requestId"`
	Nodes     []nodeDTO    `json:"nodes"`
	Edges     []edgeRefDTO `json:"edges"`
}

// addEdgeRequest carries full endpoint bodies, not just ids, because
// Driver.AddEdge auto-inserts either endpoint that is not yet persisted
// (id == -1) — the server needs the whole builder to do that insert.
type addEdgeRequest struct {
	Src        nodeDTO        `json:"src"`
	Dst        nodeDTO        `json:"dst"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// addEdgeResponse echoes back both endpoints with their final ids, since
// AddEdge may have just assigned one or both.
type addEdgeResponse struct {
	Src nodeDTO `json:"src"`
	Dst nodeDTO `json:"dst"`
}

// errorDTO is the body returned for any non-2xx response. Fields mirror
// cpgerr.SchemaViolation so a 422 round-trips enough detail for the
// client to reconstruct the same error type the in-process drivers
// raise (spec §4.11 "the same fields as the in-process SchemaViolation
// error").
type errorDTO struct {
	MethodFullName string `json:"methodFullName,omitempty"`
	Signature      string `json:"signature,omitempty"`
	File           string `json:"file,omitempty"`
	Detail         string `json:"detail"`
}

func toNodeDTO(n *driver.Node) nodeDTO {
	return nodeDTO{ID: n.ID(), Kind: string(n.Kind()), Properties: n.Properties()}
}

func fromNodeDTO(dto nodeDTO) *driver.Node {
	n := driver.NewNode(schema.NodeKind(dto.Kind))
	for k, v := range dto.Properties {
		n.Set(k, v)
	}
	n.SetID(dto.ID)
	return n
}

func toSubgraphDTO(sg *driver.Subgraph) subgraphDTO {
	dto := subgraphDTO{RequestID: sg.RequestID}
	for _, n := range sg.Nodes {
		dto.Nodes = append(dto.Nodes, toNodeDTO(n))
	}
	for _, e := range sg.Edges {
		dto.Edges = append(dto.Edges, edgeRefDTO{
			Src: e.Src.ID(), Dst: e.Dst.ID(), Label: string(e.Label), Properties: e.Properties,
		})
	}
	return dto
}

func fromSubgraphDTO(dto subgraphDTO) *driver.Subgraph {
	sg := driver.NewSubgraph()
	sg.RequestID = dto.RequestID
	byID := make(map[int64]*driver.Node, len(dto.Nodes))
	for _, n := range dto.Nodes {
		node := fromNodeDTO(n)
		byID[node.ID()] = node
		sg.Nodes = append(sg.Nodes, node)
	}
	for _, e := range dto.Edges {
		src, dst := byID[e.Src], byID[e.Dst]
		if src == nil || dst == nil {
			continue
		}
		sg.Edges = append(sg.Edges, &driver.Edge{Src: src, Dst: dst, Label: schema.EdgeKind(e.Label), Properties: e.Properties})
	}
	return sg
}
