package dto

type AskRequest struct {
	Question string `json:"question" example:"What is 2+2?"`
}

type AskResponse struct {
	Answer string `json:"answer" example:"4"`
}

type SolveResponse struct {
	Solution string `json:"solution" example:"x = 3"`
}
