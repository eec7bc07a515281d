/* models.go
 * This file contains the unified domain model shared by every sub package: teams, players, matches and
 * tournaments as they are returned from the aggregation layer, independent of which source produced them
 */

package shared

import "time"

// Game identifies one of the organisation's competitive titles
type Game string

const (
	GameLoL      Game = "lol"
	GameValorant Game = "valorant"
	GameCoD      Game = "cod"
	GameTFT      Game = "tft"
	GamePokemon  Game = "pokemon"
)

// APIGames lists the titles covered by the structured sports API. The remaining titles are
// sourced from wiki scraping, the GraphQL tournament API and the curated static dataset
var APIGames = []Game{GameLoL, GameValorant, GameCoD}

// MatchStatus is derived from source state, never set independently of it
type MatchStatus string

const (
	StatusUpcoming MatchStatus = "upcoming"
	StatusLive     MatchStatus = "live"
	StatusFinished MatchStatus = "finished"
)

// TournamentFormat describes how an individual-competitor event is scored
type TournamentFormat string

const (
	FormatPointsElimination TournamentFormat = "points_elimination"
	FormatSwissToBracket    TournamentFormat = "swiss_to_bracket"
	FormatBracket           TournamentFormat = "bracket"
	FormatOther             TournamentFormat = "other"
)

// Player represents a rostered player. Sourced either from the structured API or from the
// hand maintained static rosters for titles without API coverage
type Player struct {
	ID          string
	Nickname    string
	FirstName   string
	LastName    string
	Role        string
	Nationality string
	PhotoURL    string
	Age         int
	Socials     map[string]string
}

// StaffMember represents a coach or analyst attached to a team
type StaffMember struct {
	ID          string
	Nickname    string
	FirstName   string
	LastName    string
	Role        string
	Nationality string
	PhotoURL    string
}

// Team identity and roster. The id prefix ("panda-", "static-") deterministically indicates
// the origin source and is used to route subsequent lookups; there is no separate source field.
// Division is resolved lazily from a recent match, not static
type Team struct {
	ID       string
	Name     string
	Game     Game
	Division string
	Roster   []Player
	Coach    *StaffMember
	Analyst  *StaffMember
}

// MatchTeam is one side of a match
type MatchTeam struct {
	ID      string
	Name    string
	Tag     string
	LogoURL string
	Score   *int
}

// DraftAction is a single pick or ban within a game draft
type DraftAction struct {
	Type      string // "pick" or "ban"
	Side      string // "blue" or "red"
	Character string
}

// Draft holds pick/ban detail for a single game, with side assignment
type Draft struct {
	BlueTeamID string
	RedTeamID  string
	Actions    []DraftAction
}

// MatchGame is per-map / per-game detail inside a match
type MatchGame struct {
	Number          int
	Map             string
	Mode            string
	WinnerID        string
	DurationSeconds int
	HomeScore       *int
	AwayScore       *int
	Draft           *Draft
}

// Match is a two sided contest. Exactly one side is the organisation's team; orientation
// (home vs away) is resolved once at construction and is then stable for the match's lifetime
type Match struct {
	ID               string
	TeamID           string
	Game             Game
	Tournament       string
	TournamentID     string
	Stage            string
	Standing         string
	OpponentStanding string
	Date             time.Time
	Status           MatchStatus
	Home             MatchTeam
	Away             MatchTeam
	BestOf           int
	StreamURL        string
	Games            []MatchGame
}

// TournamentPhase is one named stage of an individual-competitor event. Phases are ordered
// by day ascending; under correct data only one phase is live at a time
type TournamentPhase struct {
	Name         string
	Day          int
	Status       MatchStatus
	Description  string
	QualifyCount int
}

// TournamentParticipant is a single competitor's line in a tournament
type TournamentParticipant struct {
	PlayerID     string
	PlayerName   string
	Placement    int
	Wins         int
	Losses       int
	Points       int
	Eliminated   bool
	CurrentPhase string
}

// Tournament is an individual-competitor event, used for titles scored by placement rather
// than team score. Built at query time by merging static definitions with scraped and
// GraphQL data; deduplicated by normalised name, first source in priority order wins
type Tournament struct {
	ID                string
	TeamID            string
	Game              Game
	Name              string
	Location          string
	StartDate         time.Time
	EndDate           time.Time // zero when unknown (single day or TBD)
	Time              string
	Status            MatchStatus
	Format            TournamentFormat
	TotalParticipants int
	PrizePool         float64
	Phases            []TournamentPhase
	Participants      []TournamentParticipant
}
