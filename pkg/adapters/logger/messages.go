package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":               "パイプラインを開始します",
		"Encoding %d frames of %s to %s":  "%d フレーム (%s) を %s にエンコード中",
		"Output saved to %s":              "出力を %s に保存しました",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",

		// Encoder element lifecycle
		"Negotiated %s with %d tasks (bitstream %d bytes)": "%s をネゴシエートしました: タスク %d 個 (ビットストリーム %d バイト)",
		"Completion worker started":                        "完了ワーカーを開始しました",
		"Completion worker stopped":                        "完了ワーカーを停止しました",
		"Drained %d in-flight tasks":                       "実行中のタスク %d 個をドレインしました",
		"Flushed %d delayed units":                         "保留中のユニット %d 個をフラッシュしました",
		"Recovered %d stranded tasks":                      "取り残されたタスク %d 個を回収しました",

		// Encoder element per-task traces (debug)
		"Task %d submitted (sync point %d)":                    "タスク %d を投入しました (同期ポイント %d)",
		"Device busy, retrying task %d":                        "デバイスがビジーです。タスク %d を再試行します",
		"Task %d completed: %d bytes":                          "タスク %d が完了しました: %d バイト",
		"Downstream pool refused %d bytes, allocating locally": "下流プールが %d バイトを拒否しました。ローカルに確保します",

		// Session, source and sink
		"Session opened for %s at %d kbps": "%s のセッションを %d kbps で開きました",
		"Rendering %d test frames at %s":   "%[2]s で %[1]d 枚のテストフレームを描画中",
		"Rendered %d frames (%d in place)": "%d フレームを描画しました (うち %d はインプレース)",
		"Muxed %d units in %d fragments":   "%d ユニットを %d フラグメントに多重化しました",

		// Warnings
		"Encode unit of task %d failed: %s":   "タスク %d のエンコードユニットが失敗しました: %s",
		"Failed to close session: %s":         "セッションのクローズに失敗しました: %s",
		"Dropped %d tasks left in exec queue": "実行キューに残ったタスク %d 個を破棄しました",
		"Failed to write summary: %s":         "サマリーの書き込みに失敗しました: %s",

		// Errors
		"Submission of task %d failed: %s":    "タスク %d の投入に失敗しました: %s",
		"Failed to push unit of task %d: %s":  "タスク %d のユニット送出に失敗しました: %s",
		"Failed to open session for %s: %s":   "%s のセッションを開けませんでした: %s",
		"Failed to size task pool for %s: %s": "%s のタスクプールを確保できませんでした: %s",
		"Failed to encode video: %s":          "動画のエンコードに失敗しました: %s",
		"Failed to write output: %s":          "出力の書き込みに失敗しました: %s",
	})
}
