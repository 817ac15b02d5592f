package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// subjectByType 每种事件对应的邮件主题
var subjectByType = map[string]string{
	domain.EventAssignmentCreated:   "替班系统 - 新的替班安排",
	domain.EventAssignmentConfirmed: "替班系统 - 替班安排已确认",
	domain.EventAssignmentRejected:  "替班系统 - 替班安排已拒绝",
	domain.EventAssignmentCancelled: "替班系统 - 替班安排已取消",
	domain.EventAssignmentCompleted: "替班系统 - 替班安排已完成",
}

func buildBody(event *domain.AssignmentEvent) string {
	a := event.Assignment
	body := fmt.Sprintf("%s 您好：\n\n", event.RecipientName)

	switch event.Type {
	case domain.EventAssignmentCreated:
		body += fmt.Sprintf("您有一条新的替班安排，替 %s（%s）在 %s 至 %s 期间替班，预计 %d 小时，请及时确认或拒绝。\n",
			a.AbsentEmployeeName, a.AbsentEmployeeRole,
			a.Window.Start.Format("2006-01-02"), a.Window.End.Format("2006-01-02"), a.EstimatedHours)
	case domain.EventAssignmentConfirmed:
		body += fmt.Sprintf("您在 %s 至 %s 期间的替班安排已确认。\n",
			a.Window.Start.Format("2006-01-02"), a.Window.End.Format("2006-01-02"))
	case domain.EventAssignmentRejected:
		body += fmt.Sprintf("您在 %s 至 %s 期间的替班安排已拒绝。\n",
			a.Window.Start.Format("2006-01-02"), a.Window.End.Format("2006-01-02"))
		if a.RejectionReason != nil {
			body += fmt.Sprintf("拒绝原因：%s\n", *a.RejectionReason)
		}
	case domain.EventAssignmentCancelled:
		body += fmt.Sprintf("您在 %s 至 %s 期间的替班安排已被协调员取消。\n",
			a.Window.Start.Format("2006-01-02"), a.Window.End.Format("2006-01-02"))
	case domain.EventAssignmentCompleted:
		hours := a.EstimatedHours
		if a.ActualHours != nil {
			hours = *a.ActualHours
		}
		body += fmt.Sprintf("您在 %s 至 %s 期间的替班安排已完成，记录工时 %d 小时。\n",
			a.Window.Start.Format("2006-01-02"), a.Window.End.Format("2006-01-02"), hours)
	}

	return body
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		"assignment_events", // 队列名称
		true,                // 是否持久化
		false,               // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,               // 是否独占，即是否允许多个消费者访问这个队列
		false,               // 是否不等待，设置为 false，即等待 RabbitMQ 确认队列是否创建成功
		nil,                 // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动确认消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("收到事件", slog.String("message", string(msg.Body)))

				event := domain.AssignmentEvent{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("事件反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				subject, ok := subjectByType[event.Type]
				if !ok {
					logger.Error("不支持的事件类型", slog.String("type", event.Type))
					_ = msg.Nack(false, false)
					continue
				}

				// 事件没有收件人时（比如员工记录已被删除）只能丢弃
				if event.RecipientMail == "" {
					logger.Error("事件没有收件人", slog.String("type", event.Type))
					_ = msg.Nack(false, false)
					continue
				}

				// 构建邮件
				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("无法设置邮件发件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(event.RecipientMail); err != nil {
					logger.Error("无法设置邮件收件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(subject)
				m.SetBodyString(mail.TypeTextPlain, buildBody(&event))

				// 发送邮件
				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待事件...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 notify worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("notify worker 已成功关闭")
}
