package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"intervue/internal/app"
	"intervue/internal/config"
	"intervue/internal/logger"
	"intervue/internal/model"
)

const (
	demoInterviewerID = "interviewer_demo"
	demoCandidateID   = "candidate_demo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer a.Close(context.Background())

	if err := a.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	session, err := a.Sessions.Create(ctx, demoInterviewerID, model.SessionConfig{
		HasWhiteboard:        true,
		HasCodingChallenge:   true,
		HasQuiz:              true,
		QuizTopic:            "Go concurrency",
		QuizQuestionCount:    5,
		QuizQuestionDuration: 30,
	})
	if err != nil {
		log.Fatalf("Failed to create demo session: %v", err)
	}

	for _, content := range []string{
		"code.exe\nchrome.exe\nslack.exe",
		"code.exe\nchrome.exe",
	} {
		if _, err := a.Logs.Append(ctx, session.RoomCode, content); err != nil {
			log.Fatalf("Failed to append demo process log: %v", err)
		}
	}

	interviewerToken, err := a.Auth.GenerateToken(demoInterviewerID, "interviewer@example.com")
	if err != nil {
		log.Fatalf("Failed to sign interviewer token: %v", err)
	}
	candidateToken, err := a.Auth.GenerateToken(demoCandidateID, "")
	if err != nil {
		log.Fatalf("Failed to sign candidate token: %v", err)
	}

	zl.Info("demo session seeded", zap.String("room_code", session.RoomCode))
	fmt.Printf("Room code:          %s\n", session.RoomCode)
	fmt.Printf("Interviewer token:  %s\n", interviewerToken)
	fmt.Printf("Candidate token:    %s\n", candidateToken)
	fmt.Printf("Join:               ws://localhost:%s/v1/ws/rooms/%s?token=%s\n", cfg.Port, session.RoomCode, candidateToken)
}
