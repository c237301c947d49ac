package dto

// ErrorBody — универсальный формат ошибки для всех сервисов.
// Code — машинный код (SCREAMING_SNAKE_CASE), Message — человекочитаемое описание,
// Details — произвольная дополнительная нагрузка (тело ответа апстрима, поля валидации).
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func NewError(code, message string, details any) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
}
