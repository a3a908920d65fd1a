package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Transcoding %s to %s":                      "%s を %s にトランスコード中",
		"Device %s opened (priority %s)":            "デバイス %s を開きました (優先度 %s)",
		"Encoding with %s (%s backend)":             "%s でエンコード中 (%s バックエンド)",
		"Transcode completed: %d frames, %.1f fps":  "トランスコード完了: %d フレーム, %.1f fps",
		"Output saved to %s":                        "出力を %s に保存しました",
		"Summary saved to %s":                       "サマリーを %s に保存しました",
		"Interrupted, shutting down...":             "中断されました。シャットダウン中...",
		"Interrupted after %d frames":               "%d フレームで中断されました",
		"End of input after %d frames":              "%d フレームで入力が終了しました",

		// Warnings
		"Device %s unavailable, continuing without hardware: %s":               "デバイス %s は利用できません。ハードウェアなしで続行します: %s",
		"VPE encoder not available, falling back to software encoding: %v":   "VPEエンコーダーが利用できません。ソフトウェアエンコードにフォールバックします: %v",
		"Failed to save debug config: %s":                                      "デバッグ設定の保存に失敗しました: %s",
		"Failed to save preprocessed frame %d: %v":                             "前処理済みフレーム %d の保存に失敗しました: %v",
		"Failed to save latency CSV: %s":                                       "レイテンシCSVの保存に失敗しました: %s",
		"Failed to write summary: %s":                                          "サマリーの書き込みに失敗しました: %s",

		// Errors
		"Failed to open device %s: %s":          "デバイス %s を開けませんでした: %s",
		"Failed to initialize preprocessor: %s": "前処理の初期化に失敗しました: %s",
		"Failed to create encoder: %s":          "エンコーダーの作成に失敗しました: %s",
		"Failed to close %s: %s":                "%s のクローズに失敗しました: %s",
		"Failed to close output %s: %s":         "出力 %s のクローズに失敗しました: %s",
		"Transcode failed: %s":                  "トランスコードに失敗しました: %s",

		// Stages (debug)
		"Frame %d preprocessed into slot %d":           "フレーム %d をスロット %d に前処理しました",
		"Encoder initialized for %dx%d %s":             "エンコーダーを %dx%d %s で初期化しました",
		"Growing stream buffer from %d to %d bytes":    "ストリームバッファを %d から %d バイトに拡張します",
		"Encoder drained, %d frames still in flight":   "エンコーダーの排出完了、処理中のフレーム %d",

		// Option tables (debug)
		"Device options: %s":  "デバイスオプション: %s",
		"Encoder options: %s": "エンコーダーオプション: %s",

		// Device (debug)
		"Opened %s through %s (fd=%d)":                       "%s を %s 経由で開きました (fd=%d)",
		"libvpi unavailable, opening device node directly: %v": "libvpi が利用できないため、デバイスノードを直接開きます: %v",
		"Opened %s (fd=%d, priority=%s, log level=%d)":       "%s を開きました (fd=%d, 優先度=%s, ログレベル=%d)",
		"Closed %s":                                           "%s を閉じました",

		// Encoder backends (debug)
		"Starting %s %v":              "%s %v を起動中",
		"Using libavcodec encoder %s": "libavcodec エンコーダー %s を使用します",
	})
}
