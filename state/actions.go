package state

type StartGame struct{}

type CallMeeting struct{}

type CompleteTask struct {
	Task string `json:"task"`
}

type Sabotage struct {
	System string `json:"system"`
}

type CastVote struct {
	TargetID string `json:"targetId"`
}

type ChooseCelebrity struct {
	CelebrityID string `json:"celebrityId"`
}

type AskQuestion struct {
	Category string `json:"category"`
}

type MakeGuess struct {
	CelebrityID string `json:"celebrityId"`
}

func (StartGame) ActionName() string       { return "startGame" }
func (CallMeeting) ActionName() string     { return "callMeeting" }
func (CompleteTask) ActionName() string    { return "completeTask" }
func (Sabotage) ActionName() string        { return "sabotage" }
func (CastVote) ActionName() string        { return "vote" }
func (ChooseCelebrity) ActionName() string { return "chooseCelebrity" }
func (AskQuestion) ActionName() string     { return "askQuestion" }
func (MakeGuess) ActionName() string       { return "makeGuess" }
