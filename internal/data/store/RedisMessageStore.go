package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/data/redisStore"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

const historyWindow = 5

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	return &RedisMessageStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisMessageStore),
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if s.ValidateChatId(ctx, id) == false {
		err := errors.New("invalid chat id")
		log.Error("Failed Validation before saving", "err", err)
		return err
	}
	return s.saveChatId(ctx, id, conversation)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	err := s.store.ListPush(ctx, id, marshallJson(conversation, s.logger))
	if err != nil {
		log.Error("error saving chat", "error:", err)
	}
	log.Debug("Saved chat successfully")
	return err
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	err := s.store.Del(ctx, id)
	if s.store.IsNil(err) {
		log.Error("Error initializing chat", id)
	}
	return s.saveChatId(ctx, id, jobModel.JobPayload{})
}

func (s *RedisMessageStore) DeleteChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Deleting chat")
	return s.store.Del(ctx, id)
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}

func marshallJson(payload jobModel.JobPayload, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshalling json :", err)
	}
	return data
}

// GetMessageHistory returns the last few exchanges as alternating user and
// assistant turns, oldest first. The empty payload written by InitNewChat is
// skipped.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting message history")

	res, err := s.store.ListGetRecent(ctx, chatId, historyWindow)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]commonModels.ChatTurn, 0, 2*len(res))
	for _, raw := range res {
		var payload jobModel.JobPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			log.Error("Skipping malformed history entry", "error:", err)
			continue
		}
		if payload.Question == "" || payload.Answer == nil {
			continue
		}
		turns = append(turns,
			commonModels.ChatTurn{Role: commonModels.RoleUser, Content: payload.Question},
			commonModels.ChatTurn{Role: commonModels.RoleAssistant, Content: payload.Answer.Answer},
		)
	}
	return turns, nil
}
