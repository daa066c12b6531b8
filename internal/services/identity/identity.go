// Package identity содержит бизнес-логику сопоставления email с пользователем
// identity-провайдера и идемпотентного создания пользователей.
//
// Провайдер не умеет искать по email, поэтому поиск реализован постраничным
// обходом всего списка пользователей с фиксированным размером страницы.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/course-platform/internal/identityprovider"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrUserNotFound пользователь с таким email не найден ни на одной странице.
var ErrUserNotFound = errors.New("user not found")

// pageSize фиксированный размер страницы обхода списка пользователей.
const pageSize = 200

// ProviderClient описывает операции identity-провайдера, нужные сервису.
type ProviderClient interface {
	ListUsers(ctx context.Context, page, perPage int) ([]identityprovider.User, error)
	CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*identityprovider.User, error)
}

// Service реализует поиск и создание пользователей.
type Service struct {
	provider ProviderClient
	log      *slog.Logger
}

// New создает новый Service.
func New(provider ProviderClient, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log,
	}
}

// FindUserByEmail ищет пользователя по email без учёта регистра,
// обходя страницы до совпадения либо до короткой страницы.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "identity.FindUserByEmail"

	needle := strings.ToLower(strings.TrimSpace(email))
	for page := 1; ; page++ {
		users, err := s.provider.ListUsers(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, u := range users {
			if strings.ToLower(u.Email) == needle {
				return &models.User{
					ID:             u.ID,
					Email:          u.Email,
					EmailConfirmed: u.EmailConfirmed,
				}, nil
			}
		}
		// короткая страница означает конец списка
		if len(users) < pageSize {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
	}
}

// EnsureUser возвращает существующего пользователя с данным email либо
// создаёт нового. Пароль — случайный неугадываемый секрет, пользователю
// он не сообщается: вход выполняется только по magic-link. Ответ провайдера
// "email уже занят" трактуется как успешный идемпотентный исход.
func (s *Service) EnsureUser(ctx context.Context, email string) (*models.User, bool, error) {
	const op = "identity.EnsureUser"

	user, err := s.FindUserByEmail(ctx, email)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	password := "ml_" + uuid.NewString()
	created, err := s.provider.CreateUser(ctx, email, password, true)
	if err != nil {
		if errors.Is(err, identityprovider.ErrEmailExists) {
			// гонка с параллельным созданием: пользователь уже есть
			s.log.Info("user already exists, resolving", slog.String("email", email))
			user, findErr := s.FindUserByEmail(ctx, email)
			if findErr != nil {
				return nil, false, fmt.Errorf("%s: %w", op, findErr)
			}
			return user, true, nil
		}
		s.log.Error("failed to create user", sl.Err(err))
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new user", slog.String("user_id", created.ID))
	return &models.User{
		ID:             created.ID,
		Email:          created.Email,
		EmailConfirmed: created.EmailConfirmed,
	}, false, nil
}
