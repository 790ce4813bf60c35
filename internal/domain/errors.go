package domain

import "errors"

// ErrInvalidTimeRange возвращается для нераспознанного окна времени.
var ErrInvalidTimeRange = errors.New("некорректное окно времени")

// ErrChannelNotAllowed возвращается для неизвестного или не входящего
// в аллоулист канала.
var ErrChannelNotAllowed = errors.New("канал не входит в аллоулист")

// ErrUpstreamUnavailable возвращается при ошибке провайдера данных.
var ErrUpstreamUnavailable = errors.New("провайдер данных недоступен")

// ErrUpstreamTimeout возвращается при превышении таймаута запроса к провайдеру.
var ErrUpstreamTimeout = errors.New("таймаут запроса к провайдеру")

// ErrInternal зарезервирована для внутренних ошибок вычисления.
var ErrInternal = errors.New("внутренняя ошибка")
