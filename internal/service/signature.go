package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// DefaultSignatureWindowHours 시그니처 시간 버킷 크기
const DefaultSignatureWindowHours = 1

// ComputeSignature 플레이어 집합 + 시간 버킷으로 매치 시그니처 계산.
// 팀 번호는 무시하고 ID 를 정렬하므로 보고 순서나 팀 표기와 무관하다.
// 인원이 10명이 아니어도 경고만 남기고 계산한다 (검증은 호출자 책임).
func ComputeSignature(entries models.Teams, at time.Time, windowHours int) string {
	if len(entries) != models.PlayersPerMatch {
		logger.Warn("Computing signature for unexpected player count",
			"count", len(entries),
			"expected", models.PlayersPerMatch,
		)
	}
	if windowHours < 1 {
		windowHours = DefaultSignatureWindowHours
	}

	ids := entries.PlayerIDs()
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(canonicalPayload(ids, timeBucket(at, windowHours))))
	return hex.EncodeToString(sum[:])
}

// timeBucket floor(floor(unix/3600) / window)
func timeBucket(at time.Time, windowHours int) int64 {
	hours := floorDiv(at.Unix(), 3600)
	return floorDiv(hours, int64(windowHours))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// canonicalPayload 기존에 저장된 시그니처와 비교 가능해야 하므로
// {"players": [...], "time_bucket": N} 형태를 ", " / ": " 구분자와 ASCII 이스케이프로 직렬화한다.
func canonicalPayload(sortedIDs []string, bucket int64) string {
	var b strings.Builder
	b.WriteString(`{"players": [`)
	for i, id := range sortedIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeASCIIString(&b, id)
	}
	b.WriteString(`], "time_bucket": `)
	b.WriteString(strconv.FormatInt(bucket, 10))
	b.WriteByte('}')
	return b.String()
}

func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || r == utf8.RuneError:
				fmt.Fprintf(b, `\u%04x`, r)
			case r < 0x7f:
				b.WriteRune(r)
			case r > 0xffff:
				// UTF-16 서로게이트 쌍
				r -= 0x10000
				fmt.Fprintf(b, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}

// ValidateIdentifiers 수집 요청의 플레이어 목록 검증
func ValidateIdentifiers(entries models.Teams) error {
	if len(entries) != models.PlayersPerMatch {
		return fmt.Errorf("%w: %w: expected %d players, got %d",
			ErrInvalidInput, ErrInvalidPlayerCount, models.PlayersPerMatch, len(entries))
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.PlayerID) == "" {
			return fmt.Errorf("%w: %w: identifier %d has an empty player id", ErrInvalidInput, ErrInvalidIdentifiers, i)
		}
		if e.Team != 0 && e.Team != 1 {
			return fmt.Errorf("%w: %w: player %s has team %d, expected 0 or 1", ErrInvalidInput, ErrInvalidIdentifiers, e.PlayerID, e.Team)
		}
		if _, dup := seen[e.PlayerID]; dup {
			return fmt.Errorf("%w: %w: player %s appears more than once", ErrInvalidInput, ErrInvalidIdentifiers, e.PlayerID)
		}
		seen[e.PlayerID] = struct{}{}
	}

	return nil
}
