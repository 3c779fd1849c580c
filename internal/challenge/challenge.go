package challenge

// Challenge is the capability set the content factory produces. The tracking
// core never builds challenges itself; it reads identity fields and forwards
// answer checks.
type Challenge interface {
	ID() string
	Type() string
	AnimalID() int
	Difficulty() int
	Question() string
	Options() []string
	CheckAnswer(answer string) bool
	Snapshot() map[string]interface{}
}

// Static is a challenge materialized from a wire payload, used by the HTTP
// layer when the upstream factory has already resolved the content.
type Static struct {
	ChallengeID   string   `json:"challenge_id"`
	ChallengeType string   `json:"challenge_type"`
	Animal        int      `json:"animal_id"`
	Level         int      `json:"difficulty"`
	Prompt        string   `json:"question"`
	Choices       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

func (s *Static) ID() string        { return s.ChallengeID }
func (s *Static) Type() string      { return s.ChallengeType }
func (s *Static) AnimalID() int     { return s.Animal }
func (s *Static) Difficulty() int   { return s.Level }
func (s *Static) Question() string  { return s.Prompt }
func (s *Static) Options() []string { return s.Choices }

func (s *Static) CheckAnswer(answer string) bool {
	return answer != "" && answer == s.CorrectAnswer
}

func (s *Static) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"challenge_id":   s.ChallengeID,
		"challenge_type": s.ChallengeType,
		"animal_id":      s.Animal,
		"difficulty":     s.Level,
		"question":       s.Prompt,
		"options":        s.Choices,
	}
}
