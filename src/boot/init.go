package boot

import (
	"cinco/src/common"
	"cinco/src/config"
	"cinco/src/db"
	"cinco/src/lib"
	awslib "cinco/src/lib/aws"
	"cinco/src/models"
	"context"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitNotifiers registers the AWS backed senders and asset store selected by
// configuration. Providers that live in lib are built lazily on first use.
func InitNotifiers(ctx context.Context) {
	if config.SMSProvider() == "sns" {
		sender, err := awslib.NewSNSSMSSender(ctx, config.SMSSenderID())
		if err != nil {
			log.Printf("Error initializing SNS sender: %s\n", err.Error())
		} else {
			lib.NewSMSSender(sender)
		}
	}
	if config.EmailProvider() == "ses" {
		sender, err := awslib.NewSESEmailSender(ctx)
		if err != nil {
			log.Printf("Error initializing SES sender: %s\n", err.Error())
		} else {
			lib.NewEmailSender(sender)
		}
	}
	if config.QRStorage() == "s3" {
		store, err := awslib.NewS3AssetStore(ctx)
		if err != nil {
			log.Printf("Error initializing S3 asset store: %s\n", err.Error())
		} else {
			lib.NewAssetStore(store)
		}
	}
	log.Printf("Payment gateway: %s\n", config.PaymentProvider())
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	_, err = lib.CreateCronJob("outbox-sweeper", common.SweepPending, config.OutboxSweepInterval())
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
