package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/rubybox/layout"
	"github.com/ByLCY/rubybox/markup"
	"github.com/ByLCY/rubybox/renderer"
	canvasrenderer "github.com/ByLCY/rubybox/renderer/canvas"
	"github.com/ByLCY/rubybox/scene"
)

type options struct {
	config   string
	texts    string
	out      string
	n        int
	workers  int
	debug    string
	split    bool
	katakana bool
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "examples/scene.json", "场景配置 JSON 路径")
	flag.StringVar(&opts.texts, "texts", "examples/texts.tsv", "文本文件：每行 消息[\\t名字[\\t选项1|选项2...]]")
	flag.StringVar(&opts.out, "out", "output", "样本输出目录")
	flag.IntVar(&opts.n, "n", 0, "生成样本数，0 表示每行文本一个")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "并发渲染数")
	flag.StringVar(&opts.debug, "debug", "", "排版调试 JSON 输出路径")
	flag.BoolVar(&opts.split, "split", false, "按句末标点把消息拆成多个样本")
	flag.BoolVar(&opts.katakana, "katakana", false, "把注音改写为片假名")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	renderer.SetLogger(logger)

	written, err := run(context.Background(), opts)
	if err != nil {
		log.Fatalf("生成样本失败: %v", err)
	}
	fmt.Printf("已生成 %d 个样本：%s\n", written, opts.out)
}

// label 是 labels.jsonl 中的一行。
type label struct {
	Image   string   `json:"image"`
	Text    string   `json:"text"`
	Plain   string   `json:"plain"`
	Name    string   `json:"name,omitempty"`
	Options []string `json:"options,omitempty"`
}

// run 串联读取配置、并发生成样本与写出标注。
func run(ctx context.Context, opts options) (int, error) {
	cfg, err := scene.LoadConfig(opts.config)
	if err != nil {
		return 0, err
	}
	samples, err := readSamples(opts.texts, opts.split, opts.katakana)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("文本文件 %s 中没有可用的文本", opts.texts)
	}

	baseDir := filepath.Dir(opts.config)
	gen, err := scene.NewGenerator(cfg, baseDir, canvasrenderer.NewRenderer(baseDir))
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	n := opts.n
	if n <= 0 {
		n = len(samples)
	}
	labels := make([]*label, n)
	debug := make([][]layout.DebugRecord, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := samples[i%len(samples)]
			out, err := gen.Generate(s)
			if scene.IsRubyOverflow(err) {
				slog.Warn("注音越界，跳过样本", "index", i, "text", s.Message, "err", err)
				return nil
			}
			if err != nil {
				return fmt.Errorf("样本 %d（%q）: %w", i, s.Message, err)
			}

			name := fmt.Sprintf("%06d.png", i)
			if err := imaging.Save(out.Image, filepath.Join(opts.out, name)); err != nil {
				return fmt.Errorf("写入样本 %s 失败: %w", name, err)
			}
			labels[i] = &label{
				Image:   name,
				Text:    out.Text,
				Plain:   markup.RemoveRubyTags(out.Text),
				Name:    out.NameText,
				Options: out.OptionTexts,
			}
			debug[i] = out.Debug
			slog.Debug("样本已生成", "index", i, "image", name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	written, err := writeLabels(filepath.Join(opts.out, "labels.jsonl"), labels)
	if err != nil {
		return 0, err
	}
	if opts.debug != "" {
		var records []layout.DebugRecord
		for _, recs := range debug {
			records = append(records, recs...)
		}
		if err := writeDebug(records, opts.debug); err != nil {
			return 0, err
		}
	}
	return written, nil
}

// readSamples 读取文本文件，每行一个样本。行内以制表符分隔消息、名字与以 | 分隔的选项。
func readSamples(path string, split, katakana bool) ([]scene.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文本文件 %s: %w", path, err)
	}
	defer file.Close()

	var samples []scene.Sample
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := markup.Normalize(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if katakana {
			line = markup.KatakanaReadings(line)
		}
		fields := strings.Split(line, "\t")
		base := scene.Sample{}
		if len(fields) > 1 {
			base.Name = fields[1]
		}
		if len(fields) > 2 && fields[2] != "" {
			base.Options = strings.Split(fields[2], "|")
		}

		messages := []string{fields[0]}
		if split {
			messages = markup.SplitSentences(fields[0])
		}
		for _, msg := range messages {
			s := base
			s.Message = msg
			samples = append(samples, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("读取文本文件 %s 失败: %w", path, err)
	}
	return samples, nil
}

func writeLabels(path string, labels []*label) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("创建标注文件失败: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	written := 0
	for _, l := range labels {
		if l == nil {
			continue
		}
		if err := enc.Encode(l); err != nil {
			return 0, fmt.Errorf("写入标注失败: %w", err)
		}
		written++
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("写入标注失败: %w", err)
	}
	return written, nil
}

func writeDebug(records []layout.DebugRecord, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(records, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
