package domain

import (
	"strconv"
	"strings"
)

// Team classifies an archived ticket by the group that closed it.
type Team string

const (
	TeamAsset Team = "Asset"
	TeamEUS   Team = "EUS"
)

// Teams lists every team in menu order.
var Teams = []Team{TeamAsset, TeamEUS}

// ParseTeam accepts a team name (case-insensitive) or a 1-based menu index.
func ParseTeam(val string) (Team, bool) {
	val = strings.TrimSpace(val)
	if idx, err := strconv.Atoi(val); err == nil {
		if idx < 1 || idx > len(Teams) {
			return "", false
		}
		return Teams[idx-1], true
	}
	for _, candidate := range Teams {
		if strings.EqualFold(string(candidate), val) {
			return candidate, true
		}
	}
	return "", false
}
