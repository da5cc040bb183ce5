package portal

import (
	"context"
	"sort"

	"github.com/setulabs/shikshasetu/core/school"
	"github.com/setulabs/shikshasetu/core/user"
)

// userRepository persists portal accounts in the document tree under "users".
// The whole collection is written back on every mutation (whole-value
// overwrite; two concurrent account edits race and the last write wins).
type userRepository struct {
	s *Syncer
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(s *Syncer) user.Repository {
	return &userRepository{s: s}
}

func (repo *userRepository) users() []user.User {
	return repo.s.Snapshot().Users
}

func (repo *userRepository) saveAll(ctx context.Context, users []user.User) error {
	return repo.s.Save(ctx, school.PathUsers, users)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.users() {
		if isExcluded(usr, excludedUsers, exclUsrsLen) {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	users := append(append([]user.User{}, repo.users()...), usr)
	if err := repo.saveAll(ctx, users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return append([]user.User{}, repo.users()...), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	for _, usr := range repo.users() {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	for _, usr := range repo.users() {
		if usr.Username == username || usr.Email == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	users := append([]user.User{}, repo.users()...)
	for i, u := range users {
		if u.ID == usr.ID {
			users[i] = usr
			if err := repo.saveAll(ctx, users); err != nil {
				return user.User{}, err
			}
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	users := make([]user.User, 0, len(repo.users()))
	for _, usr := range repo.users() {
		if !drop[usr.ID] {
			users = append(users, usr)
		}
	}
	return repo.saveAll(ctx, users)
}

func isExcluded(usr user.User, excludedUsers []user.User, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedUsers[i].ID >= usr.ID })
	return idx < n && excludedUsers[idx].ID == usr.ID
}
