package service

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// DefaultMinMatchesTogether 그룹으로 묶이기 위한 최소 동반 매치 수
const DefaultMinMatchesTogether = 3

type GroupingService struct {
	matchRepo  *repository.MatchRepository
	defaultMin int
}

func NewGroupingService(matchRepo *repository.MatchRepository, defaultMin int) *GroupingService {
	if defaultMin < 1 {
		defaultMin = DefaultMinMatchesTogether
	}
	return &GroupingService{
		matchRepo:  matchRepo,
		defaultMin: defaultMin,
	}
}

// FindPlayerGroups 매치의 각 팀에서 자주 함께 플레이한 그룹 찾기.
// 전체 매치 기록을 한 번 읽고 두 팀을 독립적으로 분석한다.
func (s *GroupingService) FindPlayerGroups(ctx context.Context, matchID string, minMatchesTogether int) (*models.GroupingResult, error) {
	if minMatchesTogether < 1 {
		minMatchesTogether = s.defaultMin
	}

	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}

	team0, team1 := match.Teams.Split()

	history, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}

	var groups0, groups1 []models.PlayerGroup
	var g errgroup.Group
	g.Go(func() error {
		groups0 = FindFrequentGroups(history, team0, 0, minMatchesTogether)
		return nil
	})
	g.Go(func() error {
		groups1 = FindFrequentGroups(history, team1, 1, minMatchesTogether)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Player groups computed",
		"matchID", matchID,
		"history", len(history),
		"team0Groups", len(groups0),
		"team1Groups", len(groups1),
	)

	return &models.GroupingResult{
		MatchID: match.ID,
		Team0:   models.TeamGrouping{Players: team0, Groups: groups0},
		Team1:   models.TeamGrouping{Players: team1, Groups: groups1},
	}, nil
}

// CoPlayEdges 전체 기록의 같은 팀 동반 횟수 (그래프 내보내기용)
func (s *GroupingService) CoPlayEdges(ctx context.Context) ([]models.CoPlayEdge, error) {
	history, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}
	return BuildCoPlayEdges(history), nil
}

type playerPair struct {
	a, b string // a < b
}

func newPlayerPair(x, y string) playerPair {
	if x > y {
		x, y = y, x
	}
	return playerPair{a: x, b: y}
}

// FindFrequentGroups candidates 중 team 에서 min 회 이상 함께 뛴 플레이어들을
// 연결 요소로 묶는다. 2명 미만인 요소는 결과에 포함하지 않는다.
func FindFrequentGroups(history []*models.Match, candidates []string, team, minMatchesTogether int) []models.PlayerGroup {
	groups := []models.PlayerGroup{}

	candidateSet := make(map[string]struct{}, len(candidates))
	unique := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := candidateSet[id]; ok {
			continue
		}
		candidateSet[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) < 2 {
		return groups
	}

	counts := make(map[playerPair]int)
	for _, m := range history {
		together := playersOnTeam(m.Teams, team, candidateSet)
		if len(together) < 2 {
			continue
		}
		for i := 0; i < len(together); i++ {
			for j := i + 1; j < len(together); j++ {
				counts[newPlayerPair(together[i], together[j])]++
			}
		}
	}

	uf := newUnionFind(unique)
	for pair, count := range counts {
		if count >= minMatchesTogether {
			uf.union(pair.a, pair.b)
		}
	}

	for _, members := range uf.components() {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		groups = append(groups, models.PlayerGroup{
			Players:         members,
			MatchesTogether: weakestLink(members, counts),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Players[0] < groups[j].Players[0]
	})

	return groups
}

// playersOnTeam 매치에서 team 에 속한 후보 플레이어 (정렬, 중복 제거)
func playersOnTeam(teams models.Teams, team int, candidates map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, e := range teams {
		if e.Team != team {
			continue
		}
		if candidates != nil {
			if _, ok := candidates[e.PlayerID]; !ok {
				continue
			}
		}
		if _, dup := seen[e.PlayerID]; dup {
			continue
		}
		seen[e.PlayerID] = struct{}{}
		out = append(out, e.PlayerID)
	}
	sort.Strings(out)
	return out
}

// weakestLink 직접 함께 뛴 적 있는 쌍 중 최소 횟수. 그런 쌍이 없으면 0
func weakestLink(members []string, counts map[playerPair]int) int {
	minCount := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			c := counts[newPlayerPair(members[i], members[j])]
			if c > 0 && (minCount == 0 || c < minCount) {
				minCount = c
			}
		}
	}
	return minCount
}

// BuildCoPlayEdges 전체 기록에서 팀별 동반 플레이 간선 계산
func BuildCoPlayEdges(history []*models.Match) []models.CoPlayEdge {
	type edgeKey struct {
		pair playerPair
		team int
	}

	counts := make(map[edgeKey]int)
	for _, m := range history {
		for _, team := range []int{0, 1} {
			players := playersOnTeam(m.Teams, team, nil)
			for i := 0; i < len(players); i++ {
				for j := i + 1; j < len(players); j++ {
					counts[edgeKey{pair: newPlayerPair(players[i], players[j]), team: team}]++
				}
			}
		}
	}

	edges := make([]models.CoPlayEdge, 0, len(counts))
	for k, c := range counts {
		edges = append(edges, models.CoPlayEdge{
			PlayerA: k.pair.a,
			PlayerB: k.pair.b,
			Team:    k.team,
			Count:   c,
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Team != edges[j].Team {
			return edges[i].Team < edges[j].Team
		}
		if edges[i].PlayerA != edges[j].PlayerA {
			return edges[i].PlayerA < edges[j].PlayerA
		}
		return edges[i].PlayerB < edges[j].PlayerB
	})

	return edges
}
