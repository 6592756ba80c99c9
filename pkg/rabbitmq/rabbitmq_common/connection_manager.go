package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectionManager управляет единственным соединением RabbitMQ на процесс.
// Каналы выдаются по запросу, соединение восстанавливается в фоне.
type ConnectionManager struct {
	url        string
	connection *amqp.Connection
	mutex      sync.RWMutex
	Logger     Logger
}

var (
	managerInstance *ConnectionManager
	once            sync.Once
)

// GetManager создает или возвращает глобальный экземпляр менеджера (Синглтон)
func GetManager(url string, logger Logger) (*ConnectionManager, error) {
	var initErr error

	once.Do(func() {
		if logger == nil {
			logger = NewNoopLogger()
		}
		managerInstance = &ConnectionManager{
			url:    url,
			Logger: logger,
		}
		// Пытаемся подключиться при инициализации
		if _, err := managerInstance.getConnection(); err != nil {
			logger.Error(err, "Initial connection failed")
			initErr = fmt.Errorf("initial connection failed: %w", err)
			return
		}
		// Запускаем в фоне мониторинг и переподключение
		go managerInstance.handleReconnect()
	})

	if initErr != nil {
		return nil, initErr
	}

	return managerInstance, nil
}

// getConnection возвращает существующее соединение или пытается его установить
func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		m.mutex.RUnlock()
		return m.connection, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Перепроверяем под write-блокировкой: соединение могло появиться
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Info("RabbitMQ connection established")
	return conn, nil
}

// GetChannel возвращает соединение и открытый в нем канал.
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// handleReconnect следит за закрытием соединения и восстанавливает его.
func (m *ConnectionManager) handleReconnect() {
	for {
		m.mutex.RLock()
		conn := m.connection
		m.mutex.RUnlock()

		if conn == nil {
			time.Sleep(5 * time.Second)
			continue
		}

		closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if closeErr == nil {
			// Штатное закрытие через Close() — выходим из цикла
			m.Logger.Info("RabbitMQ connection closed gracefully, stopping reconnect loop")
			return
		}

		m.Logger.Error(closeErr, "RabbitMQ connection lost, reconnecting...")
		for {
			time.Sleep(5 * time.Second)

			m.mutex.Lock()
			m.connection = nil
			m.mutex.Unlock()

			if _, err := m.getConnection(); err == nil {
				break
			}
		}
	}
}

// Close закрывает соединение. После этого менеджер использовать нельзя.
func (m *ConnectionManager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection != nil && !m.connection.IsClosed() {
		err := m.connection.Close()
		m.connection = nil
		return err
	}
	return nil
}
