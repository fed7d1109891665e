// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentalsrs

import "github.com/momeni/libweb/pkg/core/usecase/rentaluc"

type isbnURI struct {
	ISBN string `uri:"isbn" binding:"required"`
}

type copyURI struct {
	CopyID int64 `uri:"cid" binding:"required,gt=0"`
}

// rentReq selects the copy by exactly one of CopyID, ISBN, or Title.
// The rentals use case rejects other combinations.
type rentReq struct {
	MemberID int64  `form:"member_id" json:"member_id" binding:"required"`
	CopyID   int64  `form:"copy_id" json:"copy_id"`
	ISBN     string `form:"isbn" json:"isbn"`
	Title    string `form:"title" json:"title"`
}

func (req *rentReq) selector() rentaluc.Selector {
	return rentaluc.Selector{
		CopyID: req.CopyID,
		ISBN:   req.ISBN,
		Title:  req.Title,
	}
}

type returnReq struct {
	MemberID int64  `form:"member_id" json:"member_id" binding:"required"`
	CopyID   int64  `form:"copy_id" json:"copy_id"`
	ISBN     string `form:"isbn" json:"isbn"`
}

func (req *returnReq) selector() rentaluc.ReturnSelector {
	return rentaluc.ReturnSelector{CopyID: req.CopyID, ISBN: req.ISBN}
}
