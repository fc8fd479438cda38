package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UniqBrio/UniqBrio-sub014/internal/app"
	"github.com/UniqBrio/UniqBrio-sub014/internal/config"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
	"github.com/UniqBrio/UniqBrio-sub014/internal/service"
)

type instructor struct {
	id, name string
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close(context.Background())

	tenantID := cfg.StaffTenantID

	studentIDs := make([]string, 0, 6)
	for i, name := range []string{"Aarav", "Bea", "Chen", "Dara", "Elif", "Femi"} {
		st := &model.Student{
			ID:       fmt.Sprintf("stu_%02d", i+1),
			TenantID: tenantID,
			Name:     name,
			Email:    fmt.Sprintf("%s@students.example.com", name),
		}
		if err := a.StudentRepo.Upsert(ctx, st); err != nil {
			log.Fatalf("Failed to upsert student %s: %v", st.ID, err)
		}
		studentIDs = append(studentIDs, st.ID)
	}
	log.Printf("Seeded %d students for tenant %s", len(studentIDs), tenantID)

	instructors := []instructor{{"ins_piano", "Lena Hart"}, {"ins_violin", "Omar Reyes"}}
	courses := []struct{ id, title, location string }{
		{"course_piano", "Piano Foundations", "Studio A"},
		{"course_violin", "Violin Ensemble", "Hall 2"},
	}
	slots := [][2]string{{"09:00", "10:00"}, {"10:30", "11:30"}, {"16:00", "17:30"}}

	today := time.Now().UTC()
	created := 0
	for d := 1; d <= 7; d++ {
		date := today.AddDate(0, 0, d)
		for i, ins := range instructors {
			slot := slots[(d+i)%len(slots)]
			course := courses[i]
			session, err := a.Sessions.CreateSession(ctx, tenantID, &model.CreateSessionRequest{
				CohortID:           fmt.Sprintf("cohort_%s_%d", course.id, date.Year()),
				CourseID:           course.id,
				Title:              course.title,
				Date:               model.Date{Time: date},
				StartTime:          slot[0],
				EndTime:            slot[1],
				Instructor:         ins.name,
				InstructorID:       ins.id,
				Location:           course.location,
				MaxCapacity:        8,
				RegisteredStudents: studentIDs[i*3 : i*3+3],
			})
			var conflict *service.ConflictError
			if errors.As(err, &conflict) {
				log.Printf("Skipping %s on %s: already booked", ins.id, date.Format("2006-01-02"))
				continue
			}
			if err != nil {
				log.Fatalf("Failed to create session: %v", err)
			}
			created++
			log.Printf("Created %s %s %s-%s (%s)", session.ID, session.Date.Format("2006-01-02"), session.StartTime, session.EndTime, ins.name)
		}
	}

	fmt.Printf("\nSeeded %d sessions for tenant %s\n", created, tenantID)
}
