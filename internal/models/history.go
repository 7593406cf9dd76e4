package models

// TeamDistribution 팀별 출전 횟수
type TeamDistribution struct {
	Team0 int `json:"team_0"`
	Team1 int `json:"team_1"`
}

// PlayerHistorySummary 플레이어의 전체 매치 집계
type PlayerHistorySummary struct {
	TotalMatches     int              `json:"total_matches"`
	Wins             int              `json:"wins"`
	Losses           int              `json:"losses"`
	UnknownResults   int              `json:"unknown_results"`
	TeamDistribution TeamDistribution `json:"team_distribution"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// PlayerHistory 페이지 단위 매치 목록 + 전체 집계
type PlayerHistory struct {
	PlayerID   string               `json:"player_id"`
	Matches    []*Match             `json:"matches"`
	Summary    PlayerHistorySummary `json:"summary"`
	Pagination Pagination           `json:"pagination"`
}
