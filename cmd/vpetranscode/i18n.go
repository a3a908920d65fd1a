// Package main provides localization for the vpetranscode CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定ファイル",
		"Device":        "デバイス",
		"Input":         "入力",
		"Encoder":       "エンコーダー",
		"Output":        "出力",
		"Debug":         "デバッグ",
		"Logging":       "ログ",

		// Commands
		"Transcode raw YUV files on a VeriSilicon transcoder card":            "VeriSiliconトランスコーダーカードでRAW YUVファイルをトランスコード",
		"Encode a raw YUV file to H.264 or HEVC":                              "RAW YUVファイルをH.264またはHEVCにエンコード",
		"Report the device, the vendor library and the available encoders":    "デバイス、ベンダーライブラリ、利用可能なエンコーダーを表示",
		"Show version information":                                            "バージョン情報を表示",
		"vpetranscode version %s":                                             "vpetranscode バージョン %s",
		"usage: vpetranscode [options] <input file> <codec name> [output file]": "使い方: vpetranscode [オプション] <入力ファイル> <コーデック名> [出力ファイル]",

		// Configuration flags
		"YAML configuration file; flags override its values": "YAML設定ファイル（フラグの値が優先されます）",

		// Device flags
		"Transcoder device node":                                                  "トランスコーダーのデバイスノード",
		"Task priority (vod, live)":                                               "タスク優先度（vod, live）",
		"Vendor library log level (0 = quiet)":                                    "ベンダーライブラリのログレベル（0 = 出力なし）",
		"Fail when the device cannot be opened instead of encoding in software": "デバイスを開けない場合にソフトウェアエンコードせず失敗する",

		// Input flags
		"Input frame size (WxH)":             "入力フレームサイズ（幅x高さ）",
		"Input pixel format (yuv420p, nv12)": "入力ピクセルフォーマット（yuv420p, nv12）",
		"Input frame rate (N or N/D)":        "入力フレームレート（N または N/D）",

		// Encoder flags
		"Encoder preset":                              "エンコーダープリセット",
		"Target bit rate in bits per second":          "目標ビットレート（bps）",
		"Encoder parameters (key=value:key=value)":    "エンコーダーパラメーター（key=value:key=value）",
		"Constant rate factor (-1 = use bit rate)":    "CRF値（-1 = ビットレートを使用）",
		"Encoder profile":                             "エンコーダープロファイル",
		"Encoder level":                               "エンコーダーレベル",
		"Make every intra picture an IDR picture":     "全てのイントラピクチャをIDRピクチャにする",
		"Raw key=value device, input or encoder option; repeatable, applied last": "デバイス・入力・エンコーダーの key=value オプション（複数指定可、最後に適用）",
		"Encoder backend (auto, vpe, ffmpeg, libav)":  "エンコーダーバックエンド（auto, vpe, ffmpeg, libav）",
		"Path to the ffmpeg executable":               "ffmpeg実行ファイルのパス",

		// Output flags
		"Scale frames to WxH before encoding":                "エンコード前にフレームを 幅x高さ に拡縮",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Maximum number of frames in flight":                 "同時に処理中にできる最大フレーム数",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Probe output
		"yes":                              "あり",
		"no":                               "なし",
		"Device %s: available":             "デバイス %s: 利用可能",
		"Device %s: unavailable (%s)":      "デバイス %s: 利用不可（%s）",
		"VPI library: %s":                  "VPIライブラリ: %s",
		"VPI library: unavailable (%s)":    "VPIライブラリ: 利用不可（%s）",
		"libavcodec backend: %s":           "libavcodecバックエンド: %s",
		"ffmpeg: %s":                       "ffmpeg: %s",
		"ffmpeg: unavailable (%s)":         "ffmpeg: 利用不可（%s）",
		"Failed to list encoders: %s":      "エンコーダー一覧の取得に失敗しました: %s",

		// Summary content
		"Transcode Summary":       "トランスコードサマリー",
		"Run ID":                  "実行ID",
		"Generated At":            "生成日時",
		"Item":                    "項目",
		"Value":                   "値",
		"File":                    "ファイル",
		"Size":                    "サイズ",
		"Pixel Format":            "ピクセルフォーマット",
		"Codec":                   "コーデック",
		"Backend":                 "バックエンド",
		"Encoder Name":            "エンコーダー名",
		"Preset":                  "プリセット",
		"Bit Rate":                "ビットレート",
		"Encoder Params":          "エンコーダーパラメーター",
		"not opened":              "未オープン",
		"fallback":                "フォールバック",
		"discarded":               "破棄",
		"Packets":                 "パケット数",
		"Bitstream Size":          "ビットストリームサイズ",
		"Performance":             "パフォーマンス",
		"Frames In":               "入力フレーム数",
		"Frames In Flight (max)":  "最大処理中フレーム数",
		"Frames Out":              "出力フレーム数",
		"Elapsed":                 "経過時間",
		"FPS":                     "FPS",
		"Latency min / avg / max": "レイテンシ 最小 / 平均 / 最大",
		"Status":                  "状態",
		"Interrupted":             "中断",
	})
}
