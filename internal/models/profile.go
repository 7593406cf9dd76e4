package models

// PlayerProfile 외부 프로필 서비스 응답. 필드는 서비스가 주는 그대로 전달한다.
type PlayerProfile struct {
	ProfileID string         `json:"profile_id"`
	Handle    string         `json:"handle"`
	Platform  string         `json:"platform,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// MatchPlayerProfile 매치 참가자 프로필 + 팀
type MatchPlayerProfile struct {
	PlayerProfile
	Team int `json:"team"`
}

// ClientVersion 배포 중인 클라이언트 버전
type ClientVersion struct {
	CurrentVersion string `json:"current_version" db:"current_version"`
	DownloadURL    string `json:"download_url" db:"download_url"`
}
