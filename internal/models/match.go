package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// TeamUnknown 0/1 이 아닌 팀 값 (레거시 데이터)
const TeamUnknown = -1

// PlayersPerMatch 검증된 매치의 플레이어 수
const PlayersPerMatch = 10

// TeamEntry 플레이어 한 명과 소속 팀
type TeamEntry struct {
	PlayerID string
	Team     int
}

// Teams 제출된 순서를 유지하는 플레이어 목록
// JSON 형식: [{"<player_id>": <team>}, ...]
type Teams []TeamEntry

func (t Teams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.PlayerID)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Team)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON 엄격한 파싱 (요청 바디용). 각 항목은 키가 하나인 객체여야 한다.
func (t *Teams) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("identifiers must be a list of {player_id: team} objects: %w", err)
	}

	out := make(Teams, 0, len(raw))
	for i, obj := range raw {
		if len(obj) != 1 {
			return fmt.Errorf("identifier %d must contain exactly one player", i)
		}
		for id, num := range obj {
			team, err := num.Int64()
			if err != nil {
				return fmt.Errorf("identifier %d has a non-integer team", i)
			}
			out = append(out, TeamEntry{PlayerID: id, Team: int(team)})
		}
	}
	*t = out
	return nil
}

// ParseStoredTeams 저장된 teams 컬럼 파싱. 깨진 항목은 건너뛰고 절대 실패하지 않는다.
func ParseStoredTeams(data []byte) Teams {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Teams{}
	}

	out := make(Teams, 0, len(raw))
	for _, item := range raw {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		for id, v := range obj {
			out = append(out, TeamEntry{PlayerID: id, Team: storedTeam(v)})
		}
	}
	return out
}

func storedTeam(v any) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return TeamUnknown
	}
	if f != 0 && f != 1 {
		return TeamUnknown
	}
	return int(f)
}

// PlayerIDs 팀 정보를 제외한 플레이어 ID 목록
func (t Teams) PlayerIDs() []string {
	ids := make([]string, 0, len(t))
	for _, e := range t {
		ids = append(ids, e.PlayerID)
	}
	return ids
}

// Split 팀 0, 팀 1 플레이어 목록. 알 수 없는 팀은 어느 쪽에도 포함되지 않는다.
func (t Teams) Split() (team0, team1 []string) {
	team0, team1 = []string{}, []string{}
	for _, e := range t {
		switch e.Team {
		case 0:
			team0 = append(team0, e.PlayerID)
		case 1:
			team1 = append(team1, e.PlayerID)
		}
	}
	return team0, team1
}

// TeamOf 플레이어의 팀. 없으면 ok=false
func (t Teams) TeamOf(playerID string) (team int, ok bool) {
	for _, e := range t {
		if e.PlayerID == playerID {
			return e.Team, true
		}
	}
	return TeamUnknown, false
}

type Match struct {
	ID            string    `json:"id" db:"id"`
	Teams         Teams     `json:"teams" db:"teams"`
	Signature     *string   `json:"signature,omitempty" db:"signature"`
	WinningTeam   *int      `json:"winning_team,omitempty" db:"winning_team"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	CreatedByHost string    `json:"created_by_host,omitempty" db:"created_by_host"`
}

// IngestMatchRequest 매치 수집 요청
type IngestMatchRequest struct {
	Identifiers Teams `json:"identifiers" binding:"required"`
	WinningTeam *int  `json:"winning_team,omitempty"`
}

// IngestResult 수집 결과 (신규 또는 중복)
type IngestResult struct {
	Match              *Match
	IsDuplicate        bool
	CurrentRequestHost string
}

// MatchLookupRequest match_id 만 받는 요청
type MatchLookupRequest struct {
	MatchID string `json:"match_id" binding:"required"`
}
