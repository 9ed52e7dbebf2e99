package matching

import (
	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// DefaultMaxDepth ограничивает длину цепочки: не более DefaultMaxDepth+1 вещей
const DefaultMaxDepth = 4

// minCycleLength исключает прямой обмен двух вещей: им занимается FindMatches
const minCycleLength = 3

// Graph — ориентированный граф «хочет»: ребро A→B, если владелец A хочет категорию B
type Graph struct {
	nodes map[uuid.UUID]*models.Item
	edges map[uuid.UUID][]*models.Item
}

// BuildGraph строит граф по пулу. Порядок ребер повторяет порядок пула.
func BuildGraph(pool []*models.Item) *Graph {
	g := &Graph{
		nodes: make(map[uuid.UUID]*models.Item, len(pool)),
		edges: make(map[uuid.UUID][]*models.Item, len(pool)),
	}

	var ordered []*models.Item
	for _, item := range pool {
		if item == nil {
			continue
		}
		if _, seen := g.nodes[item.ID]; seen {
			continue
		}
		g.nodes[item.ID] = item
		ordered = append(ordered, item)
	}

	for _, from := range ordered {
		for _, to := range ordered {
			if from.ID != to.ID && from.Wants(to.Category) {
				g.edges[from.ID] = append(g.edges[from.ID], to)
			}
		}
	}

	return g
}

// Neighbors возвращает вещи, в которые ведут ребра из id
func (g *Graph) Neighbors(id uuid.UUID) []*models.Item {
	return g.edges[id]
}

// FindCycles перебирает все простые циклы через start длиной от 3 до maxDepth+1 вещей.
// Перебор полный в пределах глубины; порядок результатов не гарантируется.
func FindCycles(start *models.Item, pool []*models.Item, maxDepth int) [][]*models.Item {
	if start == nil || maxDepth+1 < minCycleLength {
		return nil
	}

	g := BuildGraph(append([]*models.Item{start}, pool...))

	search := cycleSearch{
		graph:    g,
		start:    g.nodes[start.ID],
		maxNodes: maxDepth + 1,
		onPath:   map[uuid.UUID]bool{start.ID: true},
		path:     []*models.Item{g.nodes[start.ID]},
	}
	search.walk()

	return search.cycles
}

type cycleSearch struct {
	graph    *Graph
	start    *models.Item
	maxNodes int

	// path и onPath принадлежат текущей ветке: дочерний вызов снимает свою вершину при возврате
	path   []*models.Item
	onPath map[uuid.UUID]bool

	cycles [][]*models.Item
}

func (s *cycleSearch) walk() {
	current := s.path[len(s.path)-1]

	for _, next := range s.graph.Neighbors(current.ID) {
		if next.ID == s.start.ID {
			if len(s.path) >= minCycleLength {
				s.cycles = append(s.cycles, append([]*models.Item(nil), s.path...))
			}
			continue
		}

		if s.onPath[next.ID] || len(s.path) >= s.maxNodes {
			continue
		}

		s.path = append(s.path, next)
		s.onPath[next.ID] = true

		s.walk()

		s.path = s.path[:len(s.path)-1]
		delete(s.onPath, next.ID)
	}
}

// IsChain проверяет, что каждая вещь хочет категорию следующей, включая замыкание на первую,
// и что вещи не повторяются
func IsChain(items []*models.Item) bool {
	if len(items) < minCycleLength {
		return false
	}

	seen := make(map[uuid.UUID]bool, len(items))
	for i, item := range items {
		if item == nil || seen[item.ID] {
			return false
		}
		seen[item.ID] = true

		next := items[(i+1)%len(items)]
		if next == nil || !item.Wants(next.Category) {
			return false
		}
	}
	return true
}
