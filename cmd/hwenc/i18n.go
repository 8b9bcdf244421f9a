// Package main provides localization for the hwenc CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Summary content
		"Encode Summary": "エンコードサマリー",
		"Generated":      "生成日時",
		"Settings":       "設定",
		"Pipeline":       "パイプライン",
		"Video":          "動画",
		"Item":           "項目",
		"Value":          "値",
		"Yes":            "はい",
		"No":             "いいえ",

		// Settings section
		"Codec":           "コーデック",
		"Input Format":    "入力フォーマット",
		"Bitrate":         "ビットレート",
		"GOP Size":        "GOP サイズ",
		"Async Depth":     "非同期深度",
		"Task Pool":       "タスクプール",
		"Zero-Copy Input": "ゼロコピー入力",

		// Pipeline section
		"Frames":            "フレーム数",
		"in place":          "インプレース",
		"Submitted":         "投入数",
		"Held Back":         "保留数",
		"Busy Retries":      "ビジー再試行",
		"Failed Units":      "失敗ユニット",
		"Copied Frames":     "コピーしたフレーム",
		"Local Allocations": "ローカル確保",
		"Elapsed":           "経過時間",

		// Video section
		"File":          "ファイル",
		"Units":         "ユニット数",
		"Skipped Units": "スキップしたユニット",
		"Duration":      "再生時間",
		"File Size":     "ファイルサイズ",

		// Probe output
		"Codec: %s (profile %d, level %d)":          "コーデック: %s (プロファイル %d, レベル %d)",
		"Size: %dx%d":                               "サイズ: %dx%d",
		"Samples: %d in %d fragments, %d keyframes": "サンプル: %d (フラグメント %d, キーフレーム %d)",
		"Duration: %d ms":                           "再生時間: %d ms",

		// Version command
		"hwenc version %s": "hwenc バージョン %s",
	})
}
