package page

// DefaultPageSize используется при отсутствии или некорректном page_size.
const DefaultPageSize = 20

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T
	Page     int // номер страницы (с 1)
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

// Paginate возвращает срез items для указанной страницы и метаданные.
// Страница за пределами данных даёт пустой срез, а не ошибку.
func Paginate[T any](items []T, pageNum, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageNum <= 0 {
		pageNum = 1
	}

	total := len(items)
	start := min((pageNum-1)*pageSize, total)
	end := min(start+pageSize, total)

	return Page[T]{
		Items:    items[start:end],
		Page:     pageNum,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  pageNum > 1,
		Total:    total,
	}
}
