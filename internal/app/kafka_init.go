package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordertracker/internal/messaging/kafka"
)

// initKafkaPublisher создаёт паблишер событий, если брокеры заданы.
// Ошибка подключения не останавливает сервис: он работает без событий.
func initKafkaPublisher(cfg Config, logger *log.Entry) (*kafka.OrderEventPublisher, *kafka.Producer) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, nil
	}

	publisher := kafka.NewOrderEventPublisher(producer, cfg.KafkaTopic)
	logger.WithFields(log.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   publisher.Topic(),
	}).Info("kafka producer initialized")
	return publisher, producer
}

// closeKafkaProducer закрывает producer, если он был создан.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
