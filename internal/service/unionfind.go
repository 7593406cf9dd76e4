package service

// unionFind 플레이어 ID 기반 disjoint-set.
// find 는 재귀 대신 반복문으로 경로를 압축한다. 어떤 원소가 루트가 되는지는 보장하지 않는다.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(elements []string) *unionFind {
	uf := &unionFind{parent: make(map[string]string, len(elements))}
	for _, e := range elements {
		uf.parent[e] = e
	}
	return uf
}

func (uf *unionFind) find(x string) string {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for x != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

// components 루트별 원소 목록
func (uf *unionFind) components() map[string][]string {
	out := make(map[string][]string)
	for e := range uf.parent {
		root := uf.find(e)
		out[root] = append(out[root], e)
	}
	return out
}
