package service

import (
	"context"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowUserResponse, error)
	List(ctx context.Context) ([]*dto.ShowUserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflictf("username %q is already taken", req.Username)
	}

	user := entity.User{
		Id:        uuid.New(),
		Username:  req.Username,
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, &user); err != nil {
		return nil, err
	}

	return &dto.CreateUserResponse{Id: user.Id}, nil
}

func (s *userService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFoundf("user %s not found", id)
	}

	return &dto.ShowUserResponse{
		Id:        user.Id,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *userService) List(ctx context.Context) ([]*dto.ShowUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Clause: "created_at ASC"})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowUserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, &dto.ShowUserResponse{
			Id:        u.Id,
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
		})
	}
	return res, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFoundf("user %s not found", id)
	}

	return uow.UserRepository().Delete(ctx, id)
}
