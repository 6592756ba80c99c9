// Package checkoutselector - состояние блока "сохранить корзину" на
// странице checkout: список строк корзины с галочками, выбранный набор
// variant ID и результат последнего сохранения.
package checkoutselector

import (
	"context"
	"errors"
	"sync"

	"saved-cart-service/pkg/cartclient"
)

// CartLine - одна строка живой корзины покупателя.
type CartLine struct {
	MerchandiseID string // variant ID товара
	Title         string // отображаемое название
}

// BannerTone - тон баннера блока.
type BannerTone string

const (
	ToneInfo    BannerTone = "info"
	ToneWarning BannerTone = "warning"
)

// Banner - заголовок блока; зависит только от того, опознан ли покупатель.
type Banner struct {
	Tone  BannerTone
	Title string
}

// Control - что показывается под списком галочек.
// Ровно одно из трех состояний, никогда два сразу.
type Control int

const (
	ControlSaveButton Control = iota
	ControlErrorMessage
	ControlSuccessMessage
)

// ErrSaveUnavailable - сохранение недоступно: покупатель не опознан
// или не выбран ни один вариант. Кнопка в этом состоянии отключена,
// так что до сервиса такой вызов доходить не должен.
var ErrSaveUnavailable = errors.New("save is unavailable: customer is not identified or selection is empty")

// Selector хранит состояние выбора. Безопасен для конкурентных вызовов,
// но повторное нажатие "сохранить" до завершения первого запроса
// не дедуплицируется - как и в самом checkout UI.
type Selector struct {
	mu sync.Mutex

	client     *cartclient.Client
	customerID string // пустая строка - покупатель не залогинен
	lines      []CartLine

	selected []string // порядок добавления сохраняется
	failed   bool
	saved    *cartclient.SavedCart
}

// New создает селектор. customerGID может быть пустым (гость) -
// тогда сохранение недоступно, а баннер предлагает войти.
func New(client *cartclient.Client, customerGID string, lines []CartLine) (*Selector, error) {
	s := &Selector{
		client: client,
		lines:  append([]CartLine(nil), lines...),
	}

	if customerGID != "" {
		customerID, err := ParseCustomerGID(customerGID)
		if err != nil {
			return nil, err
		}
		s.customerID = customerID
	}

	return s, nil
}

// Toggle добавляет или убирает variant ID из выбранного набора.
// Идемпотентна: повторное добавление не создает дубликата,
// повторное снятие ничего не меняет.
func (s *Selector) Toggle(variantID string, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, id := range s.selected {
		if id == variantID {
			idx = i
			break
		}
	}

	if checked {
		if idx == -1 {
			s.selected = append(s.selected, variantID)
		}
		return
	}

	if idx != -1 {
		s.selected = append(s.selected[:idx], s.selected[idx+1:]...)
	}
}

// Checked сообщает, выбран ли variant ID.
func (s *Selector) Checked(variantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.selected {
		if id == variantID {
			return true
		}
	}
	return false
}

// SelectedVariantIDs возвращает копию выбранного набора в порядке добавления.
func (s *Selector) SelectedVariantIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.selected...)
}

// Lines возвращает строки корзины для отрисовки.
func (s *Selector) Lines() []CartLine {
	return append([]CartLine(nil), s.lines...)
}

// CanSave - доступно ли сохранение: покупатель опознан и выбор непуст.
func (s *Selector) CanSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.customerID != "" && len(s.selected) > 0
}

// Save отправляет выбранный набор сервису. Прошлые ошибка и результат
// сбрасываются до запроса; любая неудача (транспорт или не-2xx)
// схлопывается в одно состояние ошибки.
func (s *Selector) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.customerID == "" || len(s.selected) == 0 {
		s.mu.Unlock()
		return ErrSaveUnavailable
	}
	s.failed = false
	s.saved = nil
	customerID := s.customerID
	variantIDs := append([]string(nil), s.selected...)
	s.mu.Unlock()

	cart, err := s.client.SaveCart(ctx, customerID, variantIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed = true
		return err
	}

	s.saved = cart
	return nil
}

// Banner возвращает заголовок блока по состоянию идентификации.
func (s *Selector) Banner() Banner {
	if s.customerID == "" {
		return Banner{Tone: ToneWarning, Title: "Please log in to save your cart"}
	}
	return Banner{Tone: ToneInfo, Title: "Save your cart"}
}

// Control возвращает текущее нижнее состояние блока:
// сообщение об ошибке, сообщение об успехе или кнопку сохранения.
func (s *Selector) Control() Control {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.failed:
		return ControlErrorMessage
	case s.saved != nil:
		return ControlSuccessMessage
	default:
		return ControlSaveButton
	}
}

// SavedCart возвращает результат последнего успешного сохранения или nil.
func (s *Selector) SavedCart() *cartclient.SavedCart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saved
}
