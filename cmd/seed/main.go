package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机缺勤, 3: 从 CSV 导入员工目录)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&csvPath, "csv", "./internal/seed/data/directory.csv", "员工目录 CSV 的路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				employee := utils.GenerateRandomEmployee(cfg.Seed.EmailDomain)
				if err := repo.CreateEmployee(context.Background(), employee); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的缺勤数量")
		} else {
			// 先获取所有在职员工
			employees, err := repo.ListActiveEmployees(context.Background())
			if err != nil {
				slog.Error("无法获取在职员工", slog.String("error", err.Error()))
				return
			}
			if len(employees) == 0 {
				slog.Error("没有在职员工，请先插入员工")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				// 随机选一个员工作为缺勤人
				employee := employees[rand.Intn(len(employees))]

				absence := utils.GenerateRandomAbsence(employee)
				if err := repo.CreateAbsence(context.Background(), absence); err != nil {
					slog.Error("无法插入缺勤记录", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入缺勤记录成功", slog.Int("count", n-cnt))
		}
	case 3:
		seed.ImportDirectory(context.Background(), repo, csvPath)
	default:
		slog.Error("指定的操作非法")
	}
}
