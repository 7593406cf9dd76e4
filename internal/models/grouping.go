package models

// PlayerGroup 함께 자주 플레이한 플레이어 묶음
type PlayerGroup struct {
	Players         []string `json:"players"`
	MatchesTogether int      `json:"matches_together"`
}

// TeamGrouping 팀 하나의 분석 결과
type TeamGrouping struct {
	Players []string      `json:"players"`
	Groups  []PlayerGroup `json:"groups"`
}

// GroupingResult 매치 하나에 대한 양 팀 분석 결과
type GroupingResult struct {
	MatchID string       `json:"match_id"`
	Team0   TeamGrouping `json:"team_0"`
	Team1   TeamGrouping `json:"team_1"`
}

// CoPlayEdge 같은 팀으로 함께 플레이한 횟수 (PlayerA < PlayerB)
type CoPlayEdge struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	Team    int    `json:"team"`
	Count   int    `json:"count"`
}
