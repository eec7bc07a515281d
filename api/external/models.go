/* models.go
 * Typed mirrors of the three external wire formats. These structs follow the providers'
 * payloads exactly; nothing here is part of the unified domain model
 */

package external

import "time"

// ---- PandaScore (structured sports REST API) ----

type PandaPlayer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	Nationality string `json:"nationality"`
	ImageURL    string `json:"image_url"`
	Age         int    `json:"age"`
}

type PandaTeam struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Acronym  string        `json:"acronym"`
	ImageURL string        `json:"image_url"`
	Players  []PandaPlayer `json:"players"`
}

type PandaLeague struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PandaSerie struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

type PandaTournament struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type PandaOpponent struct {
	Opponent PandaTeam `json:"opponent"`
}

type PandaResult struct {
	TeamID int `json:"team_id"`
	Score  int `json:"score"`
}

type PandaStream struct {
	RawURL string `json:"raw_url"`
	Main   bool   `json:"main"`
}

type PandaGame struct {
	ID       int    `json:"id"`
	Position int    `json:"position"`
	Status   string `json:"status"`
	Length   int    `json:"length"`
	Winner   struct {
		ID int `json:"id"`
	} `json:"winner"`
}

type PandaMatch struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	MatchType     string          `json:"match_type"`
	BeginAt       *time.Time      `json:"begin_at"`
	NumberOfGames int             `json:"number_of_games"`
	League        PandaLeague     `json:"league"`
	Serie         PandaSerie      `json:"serie"`
	Tournament    PandaTournament `json:"tournament"`
	Opponents     []PandaOpponent `json:"opponents"`
	Results       []PandaResult   `json:"results"`
	Games         []PandaGame     `json:"games"`
	StreamsList   []PandaStream   `json:"streams_list"`
}

// PandaDraftAction is one pick or ban inside a game's draft detail
type PandaDraftAction struct {
	Type      string `json:"type"`
	TeamID    int    `json:"team_id"`
	Character struct {
		Name string `json:"name"`
	} `json:"character"`
}

// PandaGameDetail is the per game payload of the match detail endpoint for titles that
// publish draft data
type PandaGameDetail struct {
	ID       int    `json:"id"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
	Winner   struct {
		ID int `json:"id"`
	} `json:"winner"`
	BlueTeamID int                `json:"blue_team_id"`
	RedTeamID  int                `json:"red_team_id"`
	Draft      []PandaDraftAction `json:"draft"`
}

type PandaMatchDetail struct {
	PandaMatch
	DetailedGames []PandaGameDetail `json:"detailed_games"`
}

type PandaStanding struct {
	Rank int       `json:"rank"`
	Team PandaTeam `json:"team"`
	Wins int       `json:"wins"`
}

// ---- start.gg (GraphQL tournament API) ----

type GGTournament struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	City         string `json:"city"`
	StartAt      int64  `json:"startAt"`
	EndAt        int64  `json:"endAt"`
	NumAttendees int    `json:"numAttendees"`
	Events       []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"events"`
}

type GGStandingNode struct {
	Placement int `json:"placement"`
	Entrant   struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"entrant"`
}

type GGSetNode struct {
	ID           int    `json:"id"`
	Round        int    `json:"round"`
	DisplayScore string `json:"displayScore"`
	WinnerID     int    `json:"winnerId"`
}
