// Package rtevent はリアルタイム配信イベントの型定義とシリアライズを提供する。
// WebSocket経由でクライアントに配信するフレームの共通形式を定義する。
package rtevent

import (
	"encoding/json"
	"fmt"
)

// Encode はイベント種類とペイロードからEnvelopeのJSONバイト列を生成する。
func Encode(event Type, data any) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("ペイロードのシリアライズに失敗: %w", err)
	}

	envelope := Envelope{
		Event: event,
		Data:  jsonData,
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("エンベロープのシリアライズに失敗: %w", err)
	}
	return encoded, nil
}

// Decode はJSONバイト列からEnvelopeを復元する。
// クライアント側やテストでの受信処理に使用する。
func Decode(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("エンベロープのデシリアライズに失敗: %w", err)
	}
	if envelope.Event == "" {
		return Envelope{}, fmt.Errorf("イベント種類が空です")
	}
	return envelope, nil
}
