// guard содержит пер-запросные проверки авторизации.
//
// Гард — это явная фабрика с зависимостями в аргументах (репозитории, секрет
// подписи, часы), возвращающая значение с одним методом Evaluate. Результат —
// трёхзначный Decision: Allow/Deny/NotFound. Ожидаемые отказы никогда не
// выражаются паникой или ошибкой — транспорт сам решает, каким статусом
// ответить на каждый исход.
//
// Цепочка гардов одного запроса (session -> chat -> participant) выполняется
// строго последовательно; поздний гард вправе рассчитывать на записи ранних
// в Meta.
package guard

import "context"

// Decision — исход проверки гарда.
type Decision int

const (
	// Deny — запрос отклонён. Для SessionGuard это «не аутентифицирован»,
	// для гардов ресурсов — «нет прав» (не участник чата).
	Deny Decision = iota
	// Allow — запрос пропущен дальше по цепочке.
	Allow
	// NotFound — запрошенный ресурс не существует. Всегда доводится до
	// клиента как 404, независимо от настроек гарда.
	NotFound
)

// String возвращает строковое представление исхода (для логов).
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	default:
		return "deny"
	}
}

// Carrier — транспортная абстракция входящего вызова.
//
// HTTP-запрос и WS-handshake предъявляют креденшиал по-разному: HTTP — в
// заголовке Authorization со схемой "Bearer", WS — сырым токеном в поле
// рукопожатия. Carrier скрывает эту разницу от гардов.
type Carrier interface {
	// Authorization возвращает предъявленный креденшиал и признак того, что
	// он пришёл в заголовке Authorization (то есть несёт префикс схемы
	// "Bearer "). Для WS-рукопожатия bearer == false, а value — сырой токен.
	Authorization() (value string, bearer bool)
	// UserAgent возвращает строку User-Agent текущего вызова.
	UserAgent() string
	// Param возвращает именованный параметр маршрута ("" — если его нет).
	Param(name string) string
	// Meta возвращает метаданные текущего запроса.
	Meta() *Meta
}

// Guard — пер-запросная проверка. Evaluate не имеет побочных эффектов,
// кроме чтений из хранилища и публикации разрешённых сущностей в Meta.
type Guard interface {
	Evaluate(ctx context.Context, req Carrier) Decision
}
